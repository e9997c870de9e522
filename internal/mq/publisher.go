package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeJobPending   MessageType = "job.pending"
	MessageTypeJobCompleted MessageType = "job.completed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// JobPendingPayload — payload события о новом job.
type JobPendingPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// JobCompletedPayload — payload события о завершённом job.
type JobCompletedPayload struct {
	JobID    uuid.UUID `json:"job_id"`
	SchemaID uuid.UUID `json:"schema_id"`
	Status   string    `json:"status"` // SUCCEEDED, FAILED или CANCELLED
	Error    string    `json:"error,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishJobPending публикует событие о новом job, ожидающем выполнения.
// Потребитель: Runner.
func (p *Publisher) PublishJobPending(ctx context.Context, jobID uuid.UUID) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobPending,
		Payload:   JobPendingPayload{JobID: jobID},
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeJobs, RoutingKeyPending, msg)
}

// PublishJobCompleted публикует событие о завершённом job.
// Потребители: внешние интеграции (webhooks, уведомления UI).
func (p *Publisher) PublishJobCompleted(ctx context.Context, payload JobCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeJobs, RoutingKeyCompleted, msg)
}
