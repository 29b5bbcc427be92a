package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"employee.registry/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(employees handler.EmployeeService, attendance handler.AttendanceService) *mux.Router {

	employeeHandler := handler.EmployeeHandler{
		Service: employees,
	}
	attendanceHandler := handler.AttendanceHandler{
		Service: attendance,
	}

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.NotFoundHandler = requestLogger(http.HandlerFunc(handler.NotFound))
	r.MethodNotAllowedHandler = requestLogger(http.HandlerFunc(handler.NotFound))

	r.HandleFunc("/employees", employeeHandler.ListEmployees).Methods(http.MethodGet)
	r.HandleFunc("/employee", employeeHandler.AddEmployee).Methods(http.MethodPost)
	r.HandleFunc("/employee/{employee_id}", employeeHandler.GetEmployee).Methods(http.MethodGet)
	r.HandleFunc("/employee/{employee_id}", employeeHandler.DeleteEmployee).Methods(http.MethodDelete)
	r.HandleFunc("/update-employee/{employee_id}", employeeHandler.UpdateEmployee).Methods(http.MethodPut)

	r.HandleFunc("/attendance", attendanceHandler.ListAttendance).Methods(http.MethodGet)
	r.HandleFunc("/getattendance/all", attendanceHandler.ListAttendance).Methods(http.MethodGet)
	r.HandleFunc("/attendance/all", attendanceHandler.ListAttendanceByDate).Methods(http.MethodGet)
	r.HandleFunc("/attendance/search", attendanceHandler.SearchAttendance).Methods(http.MethodGet)
	r.HandleFunc("/attendance/{employee_id}/{date}", attendanceHandler.GetAttendance).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return r
}
