package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrConflict is returned by Create when the id is already taken.
var ErrConflict = errors.New("document already exists")

// MemoryStore is an in-process DocumentStore used for local development and
// tests. It keeps insertion order so Query behaves like the database adapters.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]Document
}

// NewMemoryStore creates an empty store, optionally seeded with documents.
func NewMemoryStore(seed ...Document) *MemoryStore {
	s := &MemoryStore{docs: make(map[string]Document)}
	for _, doc := range seed {
		_ = s.Create(context.Background(), doc)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc)
}

func (s *MemoryStore) Query(_ context.Context, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0)
	for _, id := range s.order {
		doc := s.docs[id]
		if !filter.Matches(doc) {
			continue
		}
		c, err := clone(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, doc Document) error {
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("document has no %q attribute", IDField)
	}
	c, err := clone(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; exists {
		return fmt.Errorf("create %q: %w", id, ErrConflict)
	}
	s.docs[id] = c
	s.order = append(s.order, id)
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, id string, doc Document) error {
	c, err := clone(doc)
	if err != nil {
		return err
	}
	c[IDField] = id

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; !exists {
		return ErrNotFound
	}
	s.docs[id] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; !exists {
		return ErrNotFound
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func clone(doc Document) (Document, error) {
	return ToDocument(doc)
}
