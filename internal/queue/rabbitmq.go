package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	customerEventsQueue = "customer_events"
	dialAttempts        = 10
	dialBackoff         = 2 * time.Second
	publishTimeout      = 5 * time.Second
)

var (
	ErrConnectionClosed = errors.New("rabbitmq connection is closed")
	ErrChannelClosed    = errors.New("rabbitmq channel is closed")
)

// RabbitMQ publishes customer lifecycle events to a durable queue.
type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   amqp091.Queue
}

// CustomerEventMessage is the body published for every customer lifecycle change.
type CustomerEventMessage struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	CustomerID int32     `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newCustomerEventMessage(eventType string, customerID int32) CustomerEventMessage {
	return CustomerEventMessage{
		EventID:    uuid.New().String(),
		Type:       eventType,
		CustomerID: customerID,
		OccurredAt: time.Now().UTC(),
	}
}

// NewRabbitMQ connects to the broker and declares the customer_events queue.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := dial(url, dialAttempts, dialBackoff)
	if err != nil {
		return nil, err
	}

	r := &RabbitMQ{conn: conn}
	if err := r.declare(); err != nil {
		r.Close()
		return nil, err
	}

	log.Info().Str("queue", r.queue.Name).Msg("connected to RabbitMQ")
	return r, nil
}

// dial retries until the broker accepts a connection, which covers brokers
// that start alongside the service.
func dial(url string, attempts int, backoff time.Duration) (*amqp091.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt < attempts {
			log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Dur("backoff", backoff).Msg("RabbitMQ not reachable, retrying")
			time.Sleep(backoff)
		}
	}
	return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

func (r *RabbitMQ) declare() error {
	channel, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	r.channel = channel

	queue, err := channel.QueueDeclare(customerEventsQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", customerEventsQueue, err)
	}
	r.queue = queue
	return nil
}

// PublishCustomerEvent publishes a persistent JSON event. The caller's context
// bounds the publish together with publishTimeout.
func (r *RabbitMQ) PublishCustomerEvent(ctx context.Context, eventType string, customerID int32) error {
	msg := newCustomerEventMessage(eventType, customerID)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal customer event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, amqp091.Publishing{
		MessageId:    msg.EventID,
		Type:         msg.Type,
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		Timestamp:    msg.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s for customer %d: %w", eventType, customerID, err)
	}

	log.Debug().Str("event_id", msg.EventID).Str("event", eventType).Int32("customer_id", customerID).Msg("published customer event")
	return nil
}

// Ping reports whether events can currently be published.
func (r *RabbitMQ) Ping() error {
	switch {
	case r.conn == nil || r.conn.IsClosed():
		return ErrConnectionClosed
	case r.channel == nil || r.channel.IsClosed():
		return ErrChannelClosed
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if r.channel != nil && !r.channel.IsClosed() {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Discard is used when no broker is configured; events are only logged.
type Discard struct{}

func (Discard) PublishCustomerEvent(ctx context.Context, eventType string, customerID int32) error {
	log.Debug().Int32("customer_id", customerID).Str("event", eventType).Msg("event publishing disabled, dropping customer event")
	return nil
}
