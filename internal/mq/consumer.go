package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery — полученное сообщение с методами подтверждения.
type Delivery struct {
	Message *Message
	raw     amqp.Delivery
}

// Ack подтверждает обработку сообщения.
func (d *Delivery) Ack() error {
	return d.raw.Ack(false)
}

// Nack отклоняет сообщение. При requeue=false сообщение уходит в DLQ.
func (d *Delivery) Nack(requeue bool) error {
	return d.raw.Nack(false, requeue)
}

// Handler обрабатывает полученное сообщение.
// При nil сообщение подтверждается; при ошибке возвращается в очередь.
type Handler func(ctx context.Context, d *Delivery) error

// ConsumerConfig — конфигурация потребителя.
type ConsumerConfig struct {
	// Queue — очередь для подписки.
	Queue Queue

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — максимум неподтверждённых сообщений на канал.
	// По умолчанию 1.
	Prefetch int

	// Logger — логгер. Обязателен.
	Logger *slog.Logger
}

// Consumer потребляет сообщения из очереди RabbitMQ.
// Переживает обрывы соединения: после редиала заново подписывается
// на очередь.
type Consumer struct {
	conn   *Connection
	cfg    ConsumerConfig
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer создаёт нового потребителя.
func NewConsumer(conn *Connection, cfg ConsumerConfig) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Consumer{
		conn: conn,
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

// Start запускает цикл потребления в отдельной горутине.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Stop останавливает потребителя и ждёт завершения цикла.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

// run — основной цикл: подписка, обработка, переподписка после обрыва.
func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		if ctx.Err() != nil {
			return
		}

		deliveries, err := c.setupConsume(ctx)
		if err != nil {
			c.cfg.Logger.Error("consume setup failed, retrying",
				"queue", c.cfg.Queue, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		c.cfg.Logger.Info("consuming", "queue", c.cfg.Queue)
		c.processDeliveries(ctx, deliveries)
	}
}

// setupConsume открывает канал и подписывается на очередь.
func (c *Consumer) setupConsume(ctx context.Context) (<-chan amqp.Delivery, error) {
	ch, err := c.conn.NewChannel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.cfg.Queue), // queue
		"",                  // consumer tag: автогенерация
		false,               // auto-ack: выключен, подтверждаем вручную
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	go func() {
		<-ctx.Done()
		ch.Close()
	}()

	return deliveries, nil
}

// processDeliveries обрабатывает сообщения до закрытия канала.
func (c *Consumer) processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				// Канал закрыт: обрыв соединения, run переподпишется.
				return
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery разбирает и передаёт сообщение обработчику.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.cfg.Logger.Error("malformed message, dropping to DLQ",
			"queue", c.cfg.Queue, "error", err)
		_ = raw.Nack(false, false)
		return
	}

	delivery := &Delivery{Message: &msg, raw: raw}
	if err := c.cfg.Handler(ctx, delivery); err != nil {
		c.cfg.Logger.Error("handler failed",
			"queue", c.cfg.Queue,
			"message_id", msg.ID,
			"type", msg.Type,
			"error", err,
		)
		// Ошибка обработки — возвращаем в очередь для retry
		_ = delivery.Nack(true)
		return
	}

	_ = delivery.Ack()
}

// ParsePayload разбирает payload сообщения в конкретный тип.
// Payload хранится как any после json.Unmarshal, поэтому
// перемаршаливаем его обратно.
func ParsePayload[T any](msg *Message) (T, error) {
	var out T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return out, fmt.Errorf("remarshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse payload as %T: %w", out, err)
	}
	return out, nil
}
