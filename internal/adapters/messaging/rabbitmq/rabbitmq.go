package rabbitmq

import (
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue = "votes"

	connectAttempts = 5
	retryDelay      = 5 * time.Second
)

// Connect dials RabbitMQ, retrying while the broker starts up.
func Connect(url string) (*amqp.Connection, error) {
	var connection *amqp.Connection
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if connection, err = amqp.Dial(url); err == nil {
			slog.Info("connected to rabbitmq")
			return connection, nil
		}
		if attempt < connectAttempts {
			slog.Warn("failed to connect to rabbitmq, retrying", "attempt", attempt, "delay", retryDelay, "error", err)
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("could not connect to rabbitmq after %d attempts: %w", connectAttempts, err)
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}
