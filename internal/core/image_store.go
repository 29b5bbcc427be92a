package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"employee.registry/internal/ports/blob"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const imageContentType = "image/jpeg"

// ImageManager moves employee profile images between request payloads and
// the blob store.
type ImageManager interface {
	Store(ctx context.Context, payload string, employeeID int64) (string, error)
	Remove(ctx context.Context, reference string)
}

// ImageStore is the blob-backed ImageManager. Uploads and removals go
// through separate circuit breakers, so failing cleanups never block uploads.
type ImageStore struct {
	blobs    blob.Store
	uploads  *gobreaker.CircuitBreaker
	removals *gobreaker.CircuitBreaker
	newName  func() string
}

// NewImageStore creates an ImageStore on top of blobs.
func NewImageStore(blobs blob.Store) *ImageStore {
	return &ImageStore{
		blobs:   blobs,
		uploads: newBlobBreaker("Blob-Store-Upload", nil),
		// A blob that is already gone is what a removal wants.
		removals: newBlobBreaker("Blob-Store-Remove", func(err error) bool {
			return err == nil || errors.Is(err, blob.ErrNotFound)
		}),
		newName: uuid.NewString,
	}
}

func newBlobBreaker(name string, isSuccessful func(error) bool) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open once half of at least 10 blob calls have failed.
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})
}

// Store decodes a base64 image (optionally in data-URL form), uploads it as
// <employeeID>/<uuid>.jpg and returns its URL.
func (s *ImageStore) Store(ctx context.Context, payload string, employeeID int64) (string, error) {
	data, err := decodeImage(payload)
	if err != nil {
		return "", &ImageTransferError{Op: "failed to decode image", Err: err}
	}

	name := strconv.FormatInt(employeeID, 10) + "/" + s.newName() + ".jpg"

	_, err = s.uploads.Execute(func() (interface{}, error) {
		return nil, s.blobs.Put(ctx, name, data, imageContentType)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is OPEN; skipping blob upload")
		}
		return "", &ImageTransferError{Op: "failed to upload image", Err: err}
	}

	log.Ctx(ctx).Debug().Str("blob", name).Int("bytes", len(data)).Msg("Image uploaded")
	return s.blobs.URL(name), nil
}

// Remove deletes the blob a reference points at. It is best effort: failures
// are logged and otherwise ignored.
func (s *ImageStore) Remove(ctx context.Context, reference string) {
	name, err := blobNameFromReference(reference)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("reference", reference).Msg("Cannot derive blob name, image not deleted")
		return
	}

	_, err = s.removals.Execute(func() (interface{}, error) {
		return nil, s.blobs.Delete(ctx, name)
	})
	if errors.Is(err, blob.ErrNotFound) {
		log.Ctx(ctx).Debug().Str("blob", name).Msg("Image already gone")
		return
	}
	if err != nil {
		terr := &ImageTransferError{Op: "failed to delete image", Err: err}
		log.Ctx(ctx).Warn().Err(terr).Str("blob", name).Msg("Error deleting image from blob store")
		return
	}
	log.Ctx(ctx).Debug().Str("blob", name).Msg("Image deleted")
}

func decodeImage(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:image") {
		_, body, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("data URL has no payload")
		}
		payload = body
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, errors.New("image payload is empty")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients drop the padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

// blobNameFromReference keeps the last two path segments of an image URL,
// i.e. <employeeID>/<file>.
func blobNameFromReference(reference string) (string, error) {
	u, err := url.Parse(reference)
	if err != nil {
		return "", fmt.Errorf("invalid image reference: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] == "" {
		return "", fmt.Errorf("image reference %q has fewer than two path segments", reference)
	}
	return strings.Join(segments[len(segments)-2:], "/"), nil
}
