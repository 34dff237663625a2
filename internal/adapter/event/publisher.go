package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"history-quiz/internal/domain"
	"history-quiz/internal/logger"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publishChannel is the subset of *amqp091.Channel used for publishing.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends checkpoint events to a topic exchange. A Publisher built
// from an empty URI is disabled and drops every event.
type Publisher struct {
	conn     *amqp091.Connection
	channel  publishChannel
	exchange string
	enabled  bool
}

var _ domain.EventPublisher = (*Publisher)(nil)

func NewPublisher(uri, exchange string) (*Publisher, error) {
	if uri == "" {
		logger.Get().Warn("AMQP URI is empty, checkpoint events are disabled")
		return &Publisher{enabled: false}, nil
	}

	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, enabled: true}, nil
}

func newPublisherWithChannel(ch publishChannel, exchange string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange, enabled: true}
}

func (p *Publisher) Enabled() bool { return p.enabled }

func (p *Publisher) PublishCheckpoint(ctx context.Context, evt domain.CheckpointEvent) error {
	if !p.enabled {
		return nil
	}
	if evt.Type == "" {
		evt.Type = domain.EventCheckpointCompleted
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx, p.exchange, evt.Type, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}

	logger.Get().Debug("Published event",
		zap.String("type", evt.Type),
		zap.String("session_id", evt.SessionID),
		zap.String("stage", evt.Stage.String()))
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logger.Get().Warn("Failed to close AMQP channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
