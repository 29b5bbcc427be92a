package handler

import (
	"context"
	"net/http"

	"employee.registry/internal/core/model"
	"github.com/gorilla/mux"
)

// EmployeeService is what EmployeeHandler needs from the core.
type EmployeeService interface {
	GetEmployee(ctx context.Context, rawID string) (model.EmployeeRecord, error)
	ListEmployees(ctx context.Context) ([]model.EmployeeRecord, error)
	AddEmployee(ctx context.Context, in model.NewEmployee) (model.EmployeeRecord, error)
	UpdateEmployee(ctx context.Context, rawID string, upd model.EmployeeUpdate) (model.EmployeeRecord, error)
	DeleteEmployee(ctx context.Context, rawID string) error
}

type EmployeeHandler struct {
	Service EmployeeService
}

type employeeEnvelope struct {
	Message string               `json:"message"`
	Data    model.EmployeeRecord `json:"data"`
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.GetEmployee(r.Context(), mux.Vars(r)["employee_id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, emp)
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, employees)
}

func (h *EmployeeHandler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req model.NewEmployee
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	emp, err := h.Service.AddEmployee(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, employeeEnvelope{Message: "Employee added successfully", Data: emp})
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req model.EmployeeUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), mux.Vars(r)["employee_id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, employeeEnvelope{Message: "Employee updated successfully", Data: emp})
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteEmployee(r.Context(), mux.Vars(r)["employee_id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Employee deleted successfully")
}
