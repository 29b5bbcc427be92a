package core

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"employee.registry/internal/core/model"
	"employee.registry/internal/ports/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AttendancePrefix starts the id of every attendance document.
const AttendancePrefix = "attendance_"

const (
	attendanceDateField = "date"
	employeeIDField     = model.FieldEmployeeID
	employeeNameField   = "employeeName"
)

// AttendanceKey builds the deterministic id (and partition key) of the
// attendance document for one employee on one date.
func AttendanceKey(employeeID, date string) string {
	return AttendancePrefix + employeeID + "_" + date
}

// AttendanceService serves read-only queries over the attendance container.
type AttendanceService struct {
	repo repository.DocumentStore
}

func NewAttendanceService(repo repository.DocumentStore) *AttendanceService {
	return &AttendanceService{repo: repo}
}

// GetAttendance point-reads the record of employeeID on date.
func (s *AttendanceService) GetAttendance(ctx context.Context, employeeID, date string) (model.Attendance, error) {
	if employeeID == "" || date == "" {
		return nil, validationf("Both employee_id and date are required")
	}
	ctx, span := tracer.Start(ctx, "get_attendance", trace.WithAttributes(
		attribute.String("app.employeeId", employeeID),
		attribute.String("app.date", date),
	))
	defer span.End()

	doc, err := s.repo.Get(ctx, AttendanceKey(employeeID, date))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("Attendance record not found for employee %s on %s", employeeID, date)
	}
	if err != nil {
		return nil, &StoreError{Op: "failed to fetch attendance record", Err: err}
	}
	return model.Attendance(doc), nil
}

// ListAttendance returns attendance records, optionally narrowed to one date
// (exact match) and one employee.
func (s *AttendanceService) ListAttendance(ctx context.Context, date, employeeID string) ([]model.Attendance, error) {
	filter := repository.Where().HasPrefix(repository.IDField, AttendancePrefix)

	if employeeID = strings.TrimSpace(employeeID); employeeID != "" {
		id, err := strconv.ParseInt(employeeID, 10, 64)
		if err != nil {
			return nil, validationf("Invalid employeeId. It should be an integer.")
		}
		filter = filter.Equal(employeeIDField, id)
	}
	if date != "" {
		filter = filter.Equal(attendanceDateField, date)
	}

	ctx, span := tracer.Start(ctx, "list_attendance")
	defer span.End()

	records, err := s.query(ctx, filter, "failed to fetch attendance records")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFoundf("No attendance records found")
	}
	return records, nil
}

// ListAttendanceByDate returns every attendance record whose date contains
// date, so "2024-01" selects the whole month.
func (s *AttendanceService) ListAttendanceByDate(ctx context.Context, date string) ([]model.Attendance, error) {
	if date == "" {
		return nil, validationf("date query parameter is required")
	}
	ctx, span := tracer.Start(ctx, "list_attendance_by_date", trace.WithAttributes(attribute.String("app.date", date)))
	defer span.End()

	filter := repository.Where().
		HasPrefix(repository.IDField, AttendancePrefix).
		Contains(attendanceDateField, date)

	records, err := s.query(ctx, filter, "failed to fetch attendance records")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFoundf("No attendance records found for date %s", date)
	}
	return records, nil
}

// SearchAttendance matches every supplied field exactly. At least one is required.
func (s *AttendanceService) SearchAttendance(ctx context.Context, q model.AttendanceQuery) ([]model.Attendance, error) {
	if q.Empty() {
		return nil, validationf("At least one search parameter (employee_id, employee_name, or date) is required")
	}

	filter := repository.Where()
	if q.EmployeeID != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(q.EmployeeID), 10, 64)
		if err != nil {
			return nil, validationf("Invalid employee_id. It should be an integer.")
		}
		filter = filter.Equal(employeeIDField, id)
	}
	if q.EmployeeName != "" {
		filter = filter.Equal(employeeNameField, q.EmployeeName)
	}
	if q.Date != "" {
		filter = filter.Equal(attendanceDateField, q.Date)
	}

	ctx, span := tracer.Start(ctx, "search_attendance")
	defer span.End()

	records, err := s.query(ctx, filter, "failed to search attendance records")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFoundf("No matching attendance records found")
	}
	return records, nil
}

func (s *AttendanceService) query(ctx context.Context, filter repository.Filter, op string) ([]model.Attendance, error) {
	docs, err := s.repo.Query(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(op)
		return nil, &StoreError{Op: op, Err: err}
	}

	records := make([]model.Attendance, 0, len(docs))
	for _, doc := range docs {
		records = append(records, model.Attendance(doc))
	}
	log.Ctx(ctx).Debug().Int("conditions", len(filter.Conditions)).Int("count", len(records)).Msg("Attendance query")
	return records, nil
}
