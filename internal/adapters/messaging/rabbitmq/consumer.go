package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

// VoteEventHandler processes one decoded vote event.
type VoteEventHandler func(ctx context.Context, event domain.VoteEvent) error

type Consumer struct {
	conn  *amqp.Connection
	queue string
}

func NewConsumer(conn *amqp.Connection, queue string) *Consumer {
	return &Consumer{conn: conn, queue: queue}
}

// Start consumes vote events until ctx is cancelled or the broker closes the
// delivery channel. Each delivery is acknowledged after handle succeeds.
func (c *Consumer) Start(ctx context.Context, handle VoteEventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, c.queue)
	if err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx,
		q.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("vote consumer started", "queue", q.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			handleDelivery(ctx, d, handle)
		}
	}
}

// handleDelivery acks processed events. Malformed messages are dropped;
// handler failures are requeued once, then dropped.
func handleDelivery(ctx context.Context, d amqp.Delivery, handle VoteEventHandler) {
	var event domain.VoteEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		slog.Error("discarding malformed vote event", "error", err)
		if err := d.Nack(false, false); err != nil {
			slog.Error("failed to nack delivery", "error", err)
		}
		return
	}

	if err := handle(ctx, event); err != nil {
		slog.Error("failed to handle vote event", "question_id", event.QuestionID, "redelivered", d.Redelivered, "error", err)
		if err := d.Nack(false, !d.Redelivered); err != nil {
			slog.Error("failed to nack delivery", "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("failed to ack delivery", "error", err)
	}
}
