package rabbitmq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// QueueName is the durable queue bound to all user lifecycle routing keys.
const QueueName = "user_events_queue"

const consumerTag = "user-events-consumer"

var routingKeys = []string{"user.created", "user.updated", "user.deleted"}

// MessageHandler processes one delivery. Return nil to ack; return an error
// to nack with requeue, leaving redelivery to the broker.
type MessageHandler func(delivery amqp.Delivery) error

// Consumer drains the user events queue and dispatches deliveries to a
// handler one at a time.
//
// Lifecycle: Start declares the exchange and queue, binds the routing keys
// and launches the delivery loop. Stop cancels the consumer, waits for the
// loop to drain, then closes the channel and connection in that order. Stop
// is idempotent and safe to call on a consumer that never started.
type Consumer struct {
	url string

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	done    chan struct{}
	running bool
}

// NewConsumer returns a consumer for the given broker URL.
func NewConsumer(url string) *Consumer {
	return &Consumer{url: url}
}

// Start connects, declares the topology and begins delivering messages to
// handler on a background goroutine. Calling Start on a running consumer is
// an error.
func (c *Consumer) Start(handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("consumer already started")
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	deliveries, err := ch.Consume(
		QueueName,
		consumerTag,
		false, // auto-ack off, handler outcome decides
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("start consume: %w", err)
	}

	c.conn = conn
	c.ch = ch
	c.done = make(chan struct{})
	c.running = true

	go func(done chan struct{}) {
		defer close(done)
		for msg := range deliveries {
			if err := handler(msg); err != nil {
				log.Error().Err(err).
					Str("routing_key", msg.RoutingKey).
					Msg("message handling failed, requeueing")
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}(c.done)

	log.Info().Str("queue", QueueName).Msg("consumer started")
	return nil
}

// Stop cancels delivery, waits for the loop to observe the cancellation and
// closes channel and connection. A consumer that never started is a no-op.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	// Cancel stops new deliveries; the broker closes the delivery channel,
	// which ends the loop goroutine.
	if err := c.ch.Cancel(consumerTag, false); err != nil {
		log.Warn().Err(err).Msg("consumer cancel failed")
	}
	<-c.done

	if !c.ch.IsClosed() {
		_ = c.ch.Close()
	}
	err := c.conn.Close()

	c.conn = nil
	c.ch = nil
	c.done = nil
	c.running = false

	log.Info().Msg("consumer stopped")
	if err != nil && err != amqp.ErrClosed {
		return err
	}
	return nil
}

func (c *Consumer) setup(ch *amqp.Channel) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	_, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(QueueName, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}
