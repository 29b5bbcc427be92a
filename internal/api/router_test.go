package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"employee.registry/internal/core"
	"employee.registry/internal/ports/blob"
	"employee.registry/internal/ports/messaging"
	"employee.registry/internal/ports/repository"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router    *mux.Router
	employees *repository.MemoryStore
	blobs     *blob.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		employees: repository.NewMemoryStore(),
		blobs:     blob.NewMemoryStore("https://images.example.com/employee-images"),
	}
	attendance := repository.NewMemoryStore(
		repository.Document{"id": "attendance_1_2024-01-05", "employeeId": int64(1), "employeeName": "Ada", "date": "2024-01-05", "checkIn": "09:01"},
		repository.Document{"id": "attendance_1_2024-01-06", "employeeId": int64(1), "employeeName": "Ada", "date": "2024-01-06"},
		repository.Document{"id": "attendance_2_2024-02-01", "employeeId": int64(2), "employeeName": "Bob", "date": "2024-02-01"},
	)

	env.router = NewRouter(
		core.NewEmployeeService(env.employees, core.NewImageStore(env.blobs), messaging.NoopPublisher{}),
		core.NewAttendanceService(attendance),
	)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), "%s %s", method, path)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func employeePayload() map[string]any {
	return map[string]any{
		"employeeId":    42,
		"employeeName":  "Ada Lovelace",
		"role":          "Engineer",
		"email":         "ada@example.com",
		"action":        "active",
		"dateOfJoining": "2024-01-05",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestEmployeeLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/employee", employeePayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Employee added successfully", created["message"])
	data := created["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.EqualValues(t, 42, data["employeeId"])
	assert.Equal(t, "Ada Lovelace", data["employeeName"])
	assert.Nil(t, data["imageUrl"])

	rec = env.do(t, http.MethodGet, "/employee/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, data, got)

	rec = env.do(t, http.MethodPut, "/update-employee/42", map[string]any{"role": "Manager"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Employee updated successfully", updated["message"])
	assert.Equal(t, "Manager", updated["data"].(map[string]any)["role"])

	rec = env.do(t, http.MethodGet, "/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = env.do(t, http.MethodDelete, "/employee/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": "Employee deleted successfully"}, decodeBody[map[string]string](t, rec))

	rec = env.do(t, http.MethodGet, "/employee/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]string{"message": "Employee not found"}, decodeBody[map[string]string](t, rec))
}

func TestListEmployeesEmptyIsOK(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/employees", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAddEmployeeWithImage(t *testing.T) {
	env := newTestEnv(t)
	payload := employeePayload()
	payload["imageBase64"] = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})

	rec := env.do(t, http.MethodPost, "/employee", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeBody[map[string]any](t, rec)["data"].(map[string]any)
	imageURL, ok := data["imageUrl"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(imageURL, "https://images.example.com/employee-images/42/"))
	assert.NotContains(t, data, "imageBase64")
	assert.Len(t, env.blobs.Names(), 1)
}

func TestAddEmployeeValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"empty body", nil, "JSON data is required in the request body"},
		{"empty object", "{ }", "JSON data is required in the request body"},
		{"null", "null", "JSON data is required in the request body"},
		{"missing role", func() map[string]any { p := employeePayload(); delete(p, "role"); return p }(), "All fields except image are required"},
		{"blank email", func() map[string]any { p := employeePayload(); p["email"] = ""; return p }(), "All fields except image are required"},
		{"malformed", `{"employeeId":`, ""},
		{"wrong type", `{"employeeId":"abc"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/employee", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeBody[map[string]string](t, rec)
			require.Contains(t, body, "error")
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
	assert.Equal(t, 0, env.employees.Len())
}

func TestAddEmployeeBadImageIs500(t *testing.T) {
	env := newTestEnv(t)
	payload := employeePayload()
	payload["imageBase64"] = "@@@"

	rec := env.do(t, http.MethodPost, "/employee", payload)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["error"], "failed to decode image")
	assert.Equal(t, 0, env.employees.Len())
}

func TestEmployeeRoutesRejectNonIntegerID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/employee/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec), "error")

	rec = env.do(t, http.MethodDelete, "/employee/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/update-employee/abc", map[string]any{"role": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteUnknownEmployee(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/update-employee/7", map[string]any{"role": "Manager"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Employee not found", decodeBody[map[string]string](t, rec)["message"])
	assert.Equal(t, 0, env.employees.Len())

	rec = env.do(t, http.MethodDelete, "/employee/7", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEmployeeImageReplacesBlob(t *testing.T) {
	env := newTestEnv(t)
	image := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
	payload := employeePayload()
	payload["imageBase64"] = image

	rec := env.do(t, http.MethodPost, "/employee", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	oldURL := decodeBody[map[string]any](t, rec)["data"].(map[string]any)["imageUrl"]

	rec = env.do(t, http.MethodPut, "/update-employee/42", map[string]any{"imageBase64": image})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newURL := decodeBody[map[string]any](t, rec)["data"].(map[string]any)["imageUrl"]

	assert.NotEqual(t, oldURL, newURL)
	names := env.blobs.Names()
	require.Len(t, names, 1)
	assert.True(t, strings.HasSuffix(newURL.(string), names[0]))
}

func TestGetAttendanceByKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/attendance/1/2024-01-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "09:01", decodeBody[map[string]any](t, rec)["checkIn"])

	rec = env.do(t, http.MethodGet, "/attendance/E1/2024-01-05", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	msg := decodeBody[map[string]string](t, rec)["message"]
	assert.Contains(t, msg, "E1")
	assert.Contains(t, msg, "2024-01-05")
}

func TestListAttendanceRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/attendance", "/getattendance/all"} {
		rec := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Len(t, decodeBody[[]map[string]any](t, rec), 3, path)
	}

	rec := env.do(t, http.MethodGet, "/attendance?employeeId=1&date=2024-01-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/attendance?employeeId=x", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid employeeId. It should be an integer.", decodeBody[map[string]string](t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/attendance?date=1999-01-01", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No attendance records found", decodeBody[map[string]string](t, rec)["message"])
}

func TestListAttendanceByDateRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/attendance/all?date=2024-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/attendance/all", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/attendance/all?date=2030", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchAttendanceRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/attendance/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t,
		"At least one search parameter (employee_id, employee_name, or date) is required",
		decodeBody[map[string]string](t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/attendance/search?employee_name=Bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/attendance/search?employee_id=1&date=2024-01-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/attendance/search?employee_name=Nobody", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No matching attendance records found", decodeBody[map[string]string](t, rec)["message"])
}

func TestUnknownRoutesAnswerJSONNotFound(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/employees"},
		{http.MethodPatch, "/employee/42"},
		{http.MethodDelete, "/attendance"},
	}

	for _, tt := range tests {
		rec := env.do(t, tt.method, tt.path, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, map[string]string{"message": "Resource not found"}, decodeBody[map[string]string](t, rec))
	}
}

func TestUpdateKeepsAttributesAcrossHTTP(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.employees.Create(context.Background(), repository.Document{
		"id": "doc-1", "employeeId": int64(7), "employeeName": "Bob", "role": "Engineer", "department": "R&D",
	}))

	rec := env.do(t, http.MethodPut, "/update-employee/7", map[string]any{"role": "Lead"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody[map[string]any](t, rec)["data"].(map[string]any)
	assert.Equal(t, "Lead", data["role"])
	assert.Equal(t, "R&D", data["department"])

	rec = env.do(t, http.MethodGet, "/employee/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R&D", decodeBody[map[string]any](t, rec)["department"])
}
