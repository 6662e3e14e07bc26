package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

// Publisher sends vote events to a durable queue. A channel is not safe for
// concurrent publishing, so publishes are serialised.
type Publisher struct {
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := declareQueue(ch, queue); err != nil {
		ch.Close()
		return nil, err
	}
	return &Publisher{channel: ch, queue: queue}, nil
}

func (p *Publisher) PublishVote(ctx context.Context, event domain.VoteEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode vote event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.CastAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish vote event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}
