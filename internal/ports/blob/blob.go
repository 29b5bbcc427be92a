package blob

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Delete when nothing is stored under the name.
var ErrNotFound = errors.New("blob not found")

// Store is the object-store contract: names are slash-separated paths inside
// a single container.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Delete(ctx context.Context, name string) error
	// URL returns the externally resolvable address of the named blob.
	URL(name string) string
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}
