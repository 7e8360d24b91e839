package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Keeper/internal/domain"
)

// EventType — тип события.
type EventType string

// Типы событий.
const (
	EventDeployCompleted EventType = "deploy.completed"
	EventBackupCompleted EventType = "backup.completed"
)

// Message — конверт события.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Host — хост, на котором выполнялась операция.
	Host string `json:"host,omitempty"`

	// Payload — DeploymentRecord или BackupArtifact.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
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
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
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

// publisher — то, что нужно Events от транспорта.
type publisher interface {
	Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error
}

// Events публикует терминальные записи операций в keeper.events.
// Реализует orchestrator.Notifier.
type Events struct {
	pub     publisher
	host    string
	timeout time.Duration
	now     func() time.Time
}

// NewEvents создаёт Events поверх Publisher.
func NewEvents(pub *Publisher) *Events {
	return newEvents(pub)
}

func newEvents(pub publisher) *Events {
	host, _ := os.Hostname()
	return &Events{
		pub:     pub,
		host:    host,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// NotifyDeploy публикует deploy.completed.
func (e *Events) NotifyDeploy(ctx context.Context, rec *domain.DeploymentRecord) error {
	return e.publish(ctx, RoutingKeyDeployCompleted, e.message(EventDeployCompleted, rec))
}

// NotifyBackup публикует backup.completed.
func (e *Events) NotifyBackup(ctx context.Context, art *domain.BackupArtifact) error {
	return e.publish(ctx, RoutingKeyBackupCompleted, e.message(EventBackupCompleted, art))
}

func (e *Events) message(t EventType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      t,
		Host:      e.host,
		Payload:   payload,
		Timestamp: e.now().UTC(),
	}
}

func (e *Events) publish(ctx context.Context, key RoutingKey, msg *Message) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.pub.Publish(ctx, ExchangeEvents, key, msg)
}
