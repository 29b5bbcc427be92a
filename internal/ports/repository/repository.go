package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// IDField is the document attribute holding the storage identity.
const IDField = "id"

// Document is a schemaless JSON object as held by the document store.
type Document map[string]any

// ID returns the storage identity of the document.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// DocumentStore contract. One store instance serves one container
// (employees or attendance).
//
// Query returns matches in the store's insertion order so callers that take
// the first match get a stable answer.
type DocumentStore interface {
	Get(ctx context.Context, id string) (Document, error)
	Query(ctx context.Context, filter Filter) ([]Document, error)
	Create(ctx context.Context, doc Document) error
	Replace(ctx context.Context, id string, doc Document) error
	Delete(ctx context.Context, id string) error
}

// ToDocument converts a JSON-taggable value into a Document. Integral numbers
// come back as int64 so they survive a trip through BSON unchanged.
func ToDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return parseDocument(b)
}

// FromDocument decodes a Document into the value pointed to by out.
func FromDocument(doc Document, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

func parseDocument(b []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return Document(normalize(raw).(map[string]any)), nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
