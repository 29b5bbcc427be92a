package handler

import (
	"context"
	"net/http"

	"employee.registry/internal/core/model"
	"github.com/gorilla/mux"
)

// AttendanceService is what AttendanceHandler needs from the core.
type AttendanceService interface {
	GetAttendance(ctx context.Context, employeeID, date string) (model.Attendance, error)
	ListAttendance(ctx context.Context, date, employeeID string) ([]model.Attendance, error)
	ListAttendanceByDate(ctx context.Context, date string) ([]model.Attendance, error)
	SearchAttendance(ctx context.Context, q model.AttendanceQuery) ([]model.Attendance, error)
}

type AttendanceHandler struct {
	Service AttendanceService
}

// GetAttendance serves /attendance/{employee_id}/{date}.
func (h *AttendanceHandler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.Service.GetAttendance(r.Context(), vars["employee_id"], vars["date"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// ListAttendance serves /attendance?date=&employeeId=.
func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.Service.ListAttendance(r.Context(), q.Get("date"), q.Get("employeeId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

// ListAttendanceByDate serves /attendance/all?date=.
func (h *AttendanceHandler) ListAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListAttendanceByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

// SearchAttendance serves /attendance/search?employee_id=&employee_name=&date=.
func (h *AttendanceHandler) SearchAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.Service.SearchAttendance(r.Context(), model.AttendanceQuery{
		EmployeeID:   q.Get("employee_id"),
		EmployeeName: q.Get("employee_name"),
		Date:         q.Get("date"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}
