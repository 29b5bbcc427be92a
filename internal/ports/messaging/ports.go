package messaging

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// EventPublisher defines the output port for publishing domain events.
type EventPublisher interface {
	PublishEmployee(ctx context.Context, body interface{}) error
}

// MessageSender defines the interface for sending raw messages to a messaging system.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, body []byte) error
}

// SQSClient defines the interface for the AWS SQS client.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NoopPublisher drops every event. Used when no queue is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishEmployee(context.Context, interface{}) error { return nil }
