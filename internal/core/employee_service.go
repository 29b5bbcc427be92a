package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"employee.registry/internal/core/model"
	"employee.registry/internal/ports/messaging"
	"employee.registry/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("employee-registry")

type EmployeeService struct {
	repo   repository.DocumentStore
	images ImageManager
	events messaging.EventPublisher
	newID  func() string
}

// NewEmployeeService wires the employee container, the image store and the
// event publisher into the employee use cases.
func NewEmployeeService(repo repository.DocumentStore, images ImageManager, events messaging.EventPublisher) *EmployeeService {
	if events == nil {
		events = messaging.NoopPublisher{}
	}
	return &EmployeeService{
		repo:   repo,
		images: images,
		events: events,
		newID:  uuid.NewString,
	}
}

// GetEmployee returns the first employee whose business id matches rawID.
func (s *EmployeeService) GetEmployee(ctx context.Context, rawID string) (model.EmployeeRecord, error) {
	employeeID, err := parseEmployeeID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "get_employee", employeeID)
	defer span.End()

	rec, err := s.firstEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFoundf("Employee not found")
	}
	return rec, nil
}

// ListEmployees returns every employee. No employees is an empty list, not an error.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]model.EmployeeRecord, error) {
	ctx, span := tracer.Start(ctx, "list_employees")
	defer span.End()

	docs, err := s.repo.Query(ctx, repository.Where())
	if err != nil {
		return nil, &StoreError{Op: "failed to fetch employees", Err: err}
	}

	employees := make([]model.EmployeeRecord, 0, len(docs))
	for _, doc := range docs {
		employees = append(employees, model.EmployeeRecord(doc))
	}
	return employees, nil
}

// AddEmployee validates and stores a new employee, uploading its image first
// when one is supplied.
func (s *EmployeeService) AddEmployee(ctx context.Context, in model.NewEmployee) (model.EmployeeRecord, error) {
	if err := validateNewEmployee(in); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "add_employee", in.EmployeeID)
	defer span.End()

	emp := &model.Employee{
		ID:            s.newID(),
		EmployeeID:    in.EmployeeID,
		Name:          in.Name,
		Role:          in.Role,
		Email:         in.Email,
		Action:        in.Action,
		DateOfJoining: in.DateOfJoining,
	}

	if in.ImageBase64 != "" {
		imageURL, err := s.images.Store(ctx, in.ImageBase64, in.EmployeeID)
		if err != nil {
			return nil, err
		}
		emp.ImageURL = &imageURL
	}

	doc, err := repository.ToDocument(emp)
	if err == nil {
		err = s.repo.Create(ctx, doc)
	}
	if err != nil {
		if emp.ImageURL != nil {
			s.images.Remove(ctx, *emp.ImageURL)
		}
		return nil, &StoreError{Op: "failed to add employee", Err: err}
	}

	rec := model.EmployeeRecord(doc)
	log.Ctx(ctx).Info().Int64("employee_id", emp.EmployeeID).Str("document_id", emp.ID).Msg("Employee added")
	s.publish(ctx, messaging.EmployeeCreated, rec)
	return rec, nil
}

// UpdateEmployee shallow-merges upd onto the first employee matching rawID.
// Attributes the payload does not name are kept as stored.
//
// A new image is uploaded before anything else changes. The previous image
// is removed only once the merged record is stored; if storing fails the new
// upload is removed instead, so the record never points at a deleted blob.
//
// The lookup and the replace are not atomic: a concurrent delete in between
// surfaces as not found.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, rawID string, upd model.EmployeeUpdate) (model.EmployeeRecord, error) {
	employeeID, err := parseEmployeeID(rawID)
	if err != nil {
		return nil, err
	}
	fields, err := normalizeUpdate(upd)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "update_employee", employeeID)
	defer span.End()

	current, err := s.firstEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, notFoundf("Employee not found")
	}

	var newImage string
	if payload, ok := fields.Image(); ok {
		newImage, err = s.images.Store(ctx, payload, employeeID)
		if err != nil {
			return nil, err
		}
	}

	merged := fields.ApplyTo(current)
	if newImage != "" {
		merged[model.FieldImageURL] = newImage
	}

	if err := s.repo.Replace(ctx, current.ID(), repository.Document(merged)); err != nil {
		if newImage != "" {
			s.images.Remove(ctx, newImage)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("Employee not found")
		}
		return nil, &StoreError{Op: "failed to update employee", Err: err}
	}

	if oldImage := current.ImageURL(); newImage != "" && oldImage != "" {
		s.images.Remove(ctx, oldImage)
	}

	log.Ctx(ctx).Info().Int64("employee_id", merged.EmployeeID()).Str("document_id", merged.ID()).Msg("Employee updated")
	s.publish(ctx, messaging.EmployeeUpdated, merged)
	return merged, nil
}

// DeleteEmployee removes the first employee matching rawID by its storage
// identity. The profile image is left in the blob store.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, rawID string) error {
	employeeID, err := parseEmployeeID(rawID)
	if err != nil {
		return err
	}
	ctx, span := startSpan(ctx, "delete_employee", employeeID)
	defer span.End()

	rec, err := s.firstEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFoundf("Employee not found")
	}

	if err := s.repo.Delete(ctx, rec.ID()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundf("Employee not found")
		}
		return &StoreError{Op: "failed to delete employee", Err: err}
	}

	log.Ctx(ctx).Info().Int64("employee_id", employeeID).Str("document_id", rec.ID()).Msg("Employee deleted")
	s.publish(ctx, messaging.EmployeeDeleted, rec)
	return nil
}

// firstEmployee looks an employee up by business id. Business ids are not
// unique; the store returns matches in insertion order and the first one
// wins. It returns nil, nil when nothing matches.
func (s *EmployeeService) firstEmployee(ctx context.Context, employeeID int64) (model.EmployeeRecord, error) {
	docs, err := s.repo.Query(ctx, repository.Where().Equal(model.FieldEmployeeID, employeeID))
	if err != nil {
		return nil, &StoreError{Op: "failed to fetch employee", Err: err}
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > 1 {
		log.Ctx(ctx).Warn().Int64("employee_id", employeeID).Int("matches", len(docs)).Msg("Business id matches several employees, using the first")
	}
	return model.EmployeeRecord(docs[0]), nil
}

// publish is best effort: the change is already stored.
func (s *EmployeeService) publish(ctx context.Context, typ messaging.EmployeeEventType, rec model.EmployeeRecord) {
	event := messaging.EmployeeEvent{
		Type:       typ,
		DocumentID: rec.ID(),
		EmployeeID: rec.EmployeeID(),
		ImageURL:   rec.ImageURL(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishEmployee(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", string(typ)).Msg("Failed to publish employee event")
	}
}

// normalizeUpdate brings payload numbers into the store's representation and
// rejects a business id that is not an integer, since lookups could never
// find the record again.
func normalizeUpdate(upd model.EmployeeUpdate) (model.EmployeeUpdate, error) {
	doc, err := repository.ToDocument(map[string]any(upd))
	if err != nil {
		return nil, validationf("invalid update payload: %v", err)
	}
	if v, ok := doc[model.FieldEmployeeID]; ok {
		if _, isInt := v.(int64); !isInt {
			return nil, validationf("Invalid employeeId. It should be an integer.")
		}
	}
	return model.EmployeeUpdate(doc), nil
}

func parseEmployeeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, validationf("Invalid employee id %q. It should be an integer.", raw)
	}
	return id, nil
}

func validateNewEmployee(in model.NewEmployee) error {
	if in.EmployeeID == 0 || in.Name == "" || in.Role == "" || in.Email == "" || in.Action == "" || in.DateOfJoining == "" {
		return validationf("All fields except image are required")
	}
	return nil
}

func startSpan(ctx context.Context, name string, employeeID int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("app.employeeId", strconv.FormatInt(employeeID, 10))))
}
