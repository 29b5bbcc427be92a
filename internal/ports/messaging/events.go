package messaging

import "time"

// EmployeeEventType names the change an EmployeeEvent reports.
type EmployeeEventType string

const (
	EmployeeCreated EmployeeEventType = "EMPLOYEE_CREATED"
	EmployeeUpdated EmployeeEventType = "EMPLOYEE_UPDATED"
	EmployeeDeleted EmployeeEventType = "EMPLOYEE_DELETED"
)

// EmployeeEvent is the JSON payload sent via SQS for the employee events queue
type EmployeeEvent struct {
	Type       EmployeeEventType `json:"type"`
	DocumentID string            `json:"documentId"`
	EmployeeID int64             `json:"employeeId"`
	ImageURL   string            `json:"imageUrl,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}
