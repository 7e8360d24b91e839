package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Keeper/internal/domain"
)

// Handler — функция обработки события.
type Handler func(ctx context.Context, msg *Message) error

// Consumer читает события из очереди наблюдателя.
//
// Очередь эксклюзивная и временная, поэтому сообщения подтверждаются
// сразу: повторная доставка наблюдателю не нужна.
type Consumer struct {
	conn    *Connection
	logger  *slog.Logger
	queue   Queue
	handler Handler
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, queue Queue, handler Handler) *Consumer {
	return &Consumer{
		conn:    conn,
		logger:  logger,
		queue:   queue,
		handler: handler,
	}
}

// Run потребляет сообщения до отмены ctx или ошибки обработчика.
func (c *Consumer) Run(ctx context.Context) error {
	var deliveries <-chan amqp.Delivery

	err := c.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		var err error
		deliveries, err = ch.ConsumeWithContext(
			ctx,
			string(c.queue), // queue
			"",              // consumer tag (auto-generated)
			true,            // auto-ack
			true,            // exclusive
			false,           // no-local
			false,           // no-wait
			nil,             // args
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.Info("consumer started", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}

			msg, err := DecodeMessage(raw.Body)
			if err != nil {
				c.logger.Warn("skipping malformed message", "queue", c.queue, "error", err)
				continue
			}

			if err := c.handler(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// DecodeMessage разбирает тело сообщения и приводит payload к
// DeploymentRecord или BackupArtifact по типу события.
func DecodeMessage(body []byte) (*Message, error) {
	var raw struct {
		Message
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}

	msg := raw.Message
	switch msg.Type {
	case EventDeployCompleted:
		var rec domain.DeploymentRecord
		if err := json.Unmarshal(raw.Payload, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal deploy payload: %w", err)
		}
		msg.Payload = &rec
	case EventBackupCompleted:
		var art domain.BackupArtifact
		if err := json.Unmarshal(raw.Payload, &art); err != nil {
			return nil, fmt.Errorf("unmarshal backup payload: %w", err)
		}
		msg.Payload = &art
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Type)
	}

	return &msg, nil
}
