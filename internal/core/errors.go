package core

import "fmt"

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports that no record matched.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// StoreError wraps a failure of the document store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// ImageTransferError wraps a failure to decode, upload or delete an image.
type ImageTransferError struct {
	Op  string
	Err error
}

func (e *ImageTransferError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *ImageTransferError) Unwrap() error { return e.Err }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
