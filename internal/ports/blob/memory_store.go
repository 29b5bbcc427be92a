package blob

import (
	"context"
	"sync"
)

// Object is a blob held by MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps blobs in process. Used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://localhost/blobs"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return ErrNotFound
	}
	delete(s.objects, name)
	return nil
}

func (s *MemoryStore) URL(name string) string {
	return joinURL(s.baseURL, name)
}

// Object returns the blob stored under name.
func (s *MemoryStore) Object(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

// Names lists the stored blob names.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	return names
}
