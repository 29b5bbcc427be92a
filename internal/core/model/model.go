package model

// Employee is the stored employee record. ID is the storage identity;
// EmployeeID is the business id clients look employees up by, and it is not
// guaranteed to be unique.
type Employee struct {
	ID            string  `json:"id"`
	EmployeeID    int64   `json:"employeeId"`
	Name          string  `json:"employeeName"`
	Role          string  `json:"role"`
	Email         string  `json:"email"`
	Action        string  `json:"action"`
	ImageURL      *string `json:"imageUrl"`
	DateOfJoining string  `json:"dateOfJoining"`
}

// NewEmployee is the payload for creating an employee.
type NewEmployee struct {
	EmployeeID    int64  `json:"employeeId"`
	Name          string `json:"employeeName"`
	Role          string `json:"role"`
	Email         string `json:"email"`
	Action        string `json:"action"`
	DateOfJoining string `json:"dateOfJoining"`
	ImageBase64   string `json:"imageBase64"`
}

// EmployeeRecord is an employee document as stored. It carries the fields of
// Employee plus any other attributes the record has picked up.
type EmployeeRecord map[string]any

// ID returns the storage identity.
func (r EmployeeRecord) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// EmployeeID returns the business id, or 0 when it is missing or not integral.
func (r EmployeeRecord) EmployeeID() int64 {
	switch v := r[FieldEmployeeID].(type) {
	case int64:
		return v
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	}
	return 0
}

// ImageURL returns the stored image reference, or "" when there is none.
func (r EmployeeRecord) ImageURL() string {
	url, _ := r[FieldImageURL].(string)
	return url
}

// Field names the employee service treats specially.
const (
	FieldID          = "id"
	FieldEmployeeID  = "employeeId"
	FieldImageURL    = "imageUrl"
	FieldImageBase64 = "imageBase64"
)

// EmployeeUpdate is the raw update payload. Every attribute in it is merged
// onto the stored record except the managed ones: id, imageUrl and
// imageBase64.
type EmployeeUpdate map[string]any

// Image returns the new base64 image, if the update carries one.
func (u EmployeeUpdate) Image() (string, bool) {
	payload, _ := u[FieldImageBase64].(string)
	return payload, payload != ""
}

// ApplyTo returns a copy of r with the update's attributes laid over it.
func (u EmployeeUpdate) ApplyTo(r EmployeeRecord) EmployeeRecord {
	merged := make(EmployeeRecord, len(r)+len(u))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range u {
		switch k {
		case FieldID, FieldImageURL, FieldImageBase64:
			continue
		}
		merged[k] = v
	}
	return merged
}

// Attendance is an attendance document. Besides id, employeeId, employeeName
// and date it may hold any check-in/out fields, which are passed through as is.
type Attendance map[string]any

// AttendanceQuery holds the optional filters of an attendance search.
type AttendanceQuery struct {
	EmployeeID   string
	EmployeeName string
	Date         string
}

// Empty reports whether no filter is set.
func (q AttendanceQuery) Empty() bool {
	return q.EmployeeID == "" && q.EmployeeName == "" && q.Date == ""
}
