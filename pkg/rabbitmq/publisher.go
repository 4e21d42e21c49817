package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/davydenkov/user-manage/pkg/logging"
	"github.com/davydenkov/user-manage/pkg/metrics"
	"github.com/davydenkov/user-manage/pkg/models"
)

// ExchangeName is the durable topic exchange carrying user lifecycle events.
const ExchangeName = "user_events"

const publishTimeout = 10 * time.Second

// Publisher publishes user lifecycle events to the user_events exchange.
//
// The connection and channel are dialed lazily on first publish and cached
// for the life of the process. A closed connection or channel is replaced on
// the next publish. The mutex makes the check-then-dial sequence atomic, so
// concurrent first publishes cannot leak a second connection.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for the given broker URL. No connection
// is made until the first publish.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// channel returns a live channel with the exchange declared, dialing or
// re-dialing as needed. Callers must not retain the channel across publishes.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
		p.ch = nil
	}

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("open channel: %w", err)
		}
		if err := declareExchange(ch); err != nil {
			_ = ch.Close()
			return nil, err
		}
		p.ch = ch
	}

	return p.ch, nil
}

// PublishUserEvent broadcasts a lifecycle event with routing key equal to the
// event type. The envelope's trace ID is taken from ctx, falling back to
// "unknown" outside a request scope.
//
// Errors are returned for the caller to log; callers on the request path
// swallow them, so a broker outage never fails an HTTP request. Failures are
// also counted in metrics so silent event loss stays observable.
func (p *Publisher) PublishUserEvent(ctx context.Context, eventType models.EventType, data models.EventData) error {
	metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()

	err := p.publish(ctx, eventType, data)
	if err != nil {
		metrics.PublishFailures.WithLabelValues(string(eventType)).Inc()
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, eventType models.EventType, data models.EventData) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}

	envelope := models.EventEnvelope{
		EventType: eventType,
		Data:      data,
		TraceID:   logging.TraceID(ctx),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("routing_key", string(eventType)).
		Int64("user_id", data.UserID).
		Msg("publishing user event")

	return ch.PublishWithContext(
		pubCtx,
		ExchangeName,
		string(eventType),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// Close tears down the cached channel and connection. Safe to call when the
// publisher never connected.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		_ = p.ch.Close()
	}
	p.ch = nil

	if p.conn != nil && !p.conn.IsClosed() {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	p.conn = nil
	return nil
}

// declareExchange declares the durable topic exchange. Declaration with
// identical parameters is a no-op on the broker, so this is run per channel.
func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}
