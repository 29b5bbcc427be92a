package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"employee.registry/internal/core"
	"github.com/rs/zerolog/log"
)

// Profile images travel inline as base64, so bodies can be large.
const maxJSONBodyBytes = 10 << 20

var errEmptyBody = errors.New("JSON data is required in the request body")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"message": message})
}

// NotFound answers requests no route serves, including a known path with the
// wrong method.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusNotFound, "Resource not found")
}

// writeServiceError maps the core error taxonomy onto status codes.
// Anything unexpected is a 500 carrying the raw message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		writeMessage(w, r, http.StatusNotFound, notFoundErr.Message)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads a JSON object body into target. An absent, null or empty
// object body is rejected with errEmptyBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return decodeError(err)
	}

	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(bytes.Join(bytes.Fields(trimmed), nil), []byte("{}")) {
		return errEmptyBody
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("request body too large (max %d bytes)", maxJSONBodyBytes)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid value for %q: expected %s", typeErr.Field, typeErr.Type)
	}
	return fmt.Errorf("invalid JSON: %w", err)
}
