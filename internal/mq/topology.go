package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic exchange событий Keeper.
const ExchangeEvents Exchange = "keeper.events"

// Routing keys.
const (
	RoutingKeyDeployCompleted RoutingKey = "deploy.completed"
	RoutingKeyBackupCompleted RoutingKey = "backup.completed"

	// RoutingKeyAll — все события.
	RoutingKeyAll RoutingKey = "#"
)

// SetupTopology объявляет exchange событий. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, declareExchange)
}

func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		string(ExchangeEvents), // name
		"topic",                // type
		true,                   // durable
		false,                  // auto-deleted
		false,                  // internal
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
	}
	return nil
}

// DeclareWatchQueue объявляет временную эксклюзивную очередь,
// привязанную к keeper.events по ключу key. Очередь удаляется при
// закрытии соединения.
func DeclareWatchQueue(ctx context.Context, conn *Connection, key RoutingKey) (Queue, error) {
	var name Queue

	err := conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchange(ch); err != nil {
			return err
		}

		q, err := ch.QueueDeclare(
			"",    // name (сгенерирует брокер)
			false, // durable
			true,  // delete when unused
			true,  // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare watch queue: %w", err)
		}

		if err := ch.QueueBind(q.Name, string(key), string(ExchangeEvents), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", q.Name, ExchangeEvents, err)
		}

		name = Queue(q.Name)
		return nil
	})

	return name, err
}
