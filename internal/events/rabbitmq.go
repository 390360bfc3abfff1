// Package events publishes story change notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

// Action names the kind of change a message reports
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// StoryMessage is the body of every published event
type StoryMessage struct {
	Action    Action        `json:"action"`
	StoryID   string        `json:"story_id"`
	Story     *models.Story `json:"story,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Config holds the exchange topology
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// RabbitMQ publishes story events to a durable direct exchange
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

// NewRabbitMQ connects and declares the exchange, queue and binding
func NewRabbitMQ(cfg Config, log zerolog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger := log.With().Str("component", "events").Logger()
	logger.Info().
		Str("exchange", cfg.Exchange).
		Str("queue", cfg.QueueName).
		Str("routing_key", cfg.RoutingKey).
		Msg("Connected to RabbitMQ")

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		log:        logger,
	}, nil
}

// PublishStory reports a created or updated story
func (r *RabbitMQ) PublishStory(ctx context.Context, action Action, story *models.Story) error {
	return r.publish(ctx, StoryMessage{
		Action:    action,
		StoryID:   story.ID,
		Story:     story,
		Timestamp: time.Now().UTC(),
	})
}

// PublishDeleted reports a removed story
func (r *RabbitMQ) PublishDeleted(ctx context.Context, id string) error {
	return r.publish(ctx, StoryMessage{
		Action:    ActionDeleted,
		StoryID:   id,
		Timestamp: time.Now().UTC(),
	})
}

func (r *RabbitMQ) publish(ctx context.Context, msg StoryMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    msg.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.log.Debug().
		Str("story_id", msg.StoryID).
		Str("action", string(msg.Action)).
		Msg("Published story event")

	return nil
}

// Close releases the channel and connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
