package core

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"employee.registry/internal/core/model"
	"employee.registry/internal/ports/blob"
	"employee.registry/internal/ports/messaging"
	"employee.registry/internal/ports/repository"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func jpegBase64() string {
	return base64.StdEncoding.EncodeToString(jpegBytes)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.EmployeeEvent
	err    error
}

func (p *recordingPublisher) PublishEmployee(_ context.Context, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := body.(messaging.EmployeeEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) types() []messaging.EmployeeEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.EmployeeEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// flakyBlobs wraps a MemoryStore and fails writes while failPut is set.
type flakyBlobs struct {
	*blob.MemoryStore
	failPut    bool
	failDelete bool
}

func (f *flakyBlobs) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if f.failPut {
		return errors.New("blob service unavailable")
	}
	return f.MemoryStore.Put(ctx, name, data, contentType)
}

func (f *flakyBlobs) Delete(ctx context.Context, name string) error {
	if f.failDelete {
		return errors.New("blob service unavailable")
	}
	return f.MemoryStore.Delete(ctx, name)
}

// brokenStore fails every document store call.
type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (repository.Document, error) { return nil, b.err }
func (b brokenStore) Query(context.Context, repository.Filter) ([]repository.Document, error) {
	return nil, b.err
}
func (b brokenStore) Create(context.Context, repository.Document) error          { return b.err }
func (b brokenStore) Replace(context.Context, string, repository.Document) error { return b.err }
func (b brokenStore) Delete(context.Context, string) error                       { return b.err }

type employeeFixture struct {
	repo   *repository.MemoryStore
	blobs  *flakyBlobs
	events *recordingPublisher
	svc    *EmployeeService
}

func newEmployeeFixture(t *testing.T, seed ...repository.Document) *employeeFixture {
	t.Helper()
	f := &employeeFixture{
		repo:   repository.NewMemoryStore(seed...),
		blobs:  &flakyBlobs{MemoryStore: blob.NewMemoryStore("https://images.example.com/employee-images")},
		events: &recordingPublisher{},
	}
	f.svc = NewEmployeeService(f.repo, NewImageStore(f.blobs), f.events)
	return f
}

func validNewEmployee() model.NewEmployee {
	return model.NewEmployee{
		EmployeeID:    42,
		Name:          "Ada Lovelace",
		Role:          "Engineer",
		Email:         "ada@example.com",
		Action:        "active",
		DateOfJoining: "2024-01-05",
	}
}

func addEmployee(t *testing.T, f *employeeFixture, in model.NewEmployee) model.EmployeeRecord {
	t.Helper()
	emp, err := f.svc.AddEmployee(context.Background(), in)
	require.NoError(t, err)
	return emp
}

// replaceFails serves reads from the wrapped store and fails every Replace.
type replaceFails struct {
	*repository.MemoryStore
	err error
}

func (r replaceFails) Replace(context.Context, string, repository.Document) error { return r.err }
