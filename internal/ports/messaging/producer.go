package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender           MessageSender
	employeeQueueURL string
}

func NewProducer(sender MessageSender, employeeQueueURL string) *Producer {
	return &Producer{
		sender:           sender,
		employeeQueueURL: employeeQueueURL,
	}
}

func NewSQSProducer(client SQSClient, employeeQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, employeeQueueURL)
}

func (p *Producer) PublishEmployee(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.employeeQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with employee_id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			EmployeeID json.Number `json:"employeeId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.EmployeeID != "" {
			span.SetAttributes(attribute.String("app.employeeId", payload.EmployeeID.String()))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
