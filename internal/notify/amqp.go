package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"coffeeshop/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	defaultConnectAttempts = 5
	defaultRetryBackoff    = 2 * time.Second
	dialTimeout            = 3 * time.Second
	heartbeat              = 10 * time.Second
	publishTimeout         = 3 * time.Second
)

// ErrUnavailable is returned by publish while the broker is down and the
// reconnect cooldown has not yet elapsed.
var ErrUnavailable = errors.New("rabbitmq unavailable")

// Channel is the part of *amqp.Channel the publisher relies on.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connection is the part of *amqp.Connection the publisher relies on.
type Connection interface {
	Channel() (Channel, error)
	IsClosed() bool
	Close() error
}

// DialFunc opens a broker connection.
type DialFunc func(url string) (Connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Dial connects to RabbitMQ, giving up on the TCP handshake after dialTimeout.
func Dial(url string) (Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Publisher publishes order events as persistent JSON messages to a durable
// topic exchange.
//
// Only NewPublisher retries with backoff. Once running, a dropped connection
// is redialled at most once per publish, and not again until backoff has
// passed since the last failed dial, so a broker outage costs callers one
// dial timeout rather than the whole retry budget.
type Publisher struct {
	url      string
	exchange string
	dial     DialFunc
	attempts int
	backoff  time.Duration
	logger   zerolog.Logger

	mu          sync.Mutex
	conn        Connection
	channel     Channel
	lastFailure time.Time
}

// PublisherOption customises a Publisher.
type PublisherOption func(*Publisher)

// WithDialer replaces the broker dialer.
func WithDialer(dial DialFunc) PublisherOption {
	return func(p *Publisher) {
		p.dial = dial
	}
}

// WithRetry sets how many initial connection attempts are made and the base
// backoff between them. The n-th retry waits n × backoff. The backoff is also
// the cooldown between reconnect attempts after startup.
func WithRetry(attempts int, backoff time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.attempts = attempts
		p.backoff = backoff
	}
}

// NewPublisher connects to the broker and declares the exchange.
func NewPublisher(ctx context.Context, url, exchange string, logger zerolog.Logger, opts ...PublisherOption) (*Publisher, error) {
	p := &Publisher{
		url:      url,
		exchange: exchange,
		dial:     Dial,
		attempts: defaultConnectAttempts,
		backoff:  defaultRetryBackoff,
		logger:   logger.With().Str("component", "publisher").Str("exchange", exchange).Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return p, nil
}

// connect dials with retries. Callers hold p.mu.
func (p *Publisher) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = p.open(); err == nil {
			p.logger.Info().Int("attempt", attempt).Msg("connected to rabbitmq")
			return nil
		}

		if attempt == p.attempts {
			break
		}

		wait := time.Duration(attempt) * p.backoff
		p.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("failed to connect to rabbitmq, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", p.attempts, err)
}

func (p *Publisher) open() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// reconnect makes a single dial attempt unless the last one failed less than
// backoff ago. Callers hold p.mu.
func (p *Publisher) reconnect() error {
	if !p.lastFailure.IsZero() && time.Since(p.lastFailure) < p.backoff {
		return ErrUnavailable
	}

	_ = p.closeLocked()
	if err := p.open(); err != nil {
		p.lastFailure = time.Now()
		p.logger.Warn().Err(err).Dur("retry_after", p.backoff).Msg("failed to reconnect to rabbitmq")
		return err
	}

	p.lastFailure = time.Time{}
	p.logger.Info().Msg("reconnected to rabbitmq")
	return nil
}

func (p *Publisher) closeLocked() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
		p.channel = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}

// OrderCreated publishes the event with routing key order.created.
func (p *Publisher) OrderCreated(ctx context.Context, event model.OrderCreatedEvent) error {
	return p.publish(ctx, RoutingKeyOrderCreated, event.OrderID.String(), event)
}

func (p *Publisher) publish(ctx context.Context, routingKey, messageID string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	// The order is already committed; a cancelled request must not abort
	// the publish halfway.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish message")
		// Force a fresh connection on the next publish.
		_ = p.closeLocked()
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug().
		Str("routing_key", routingKey).
		Str("message_id", messageID).
		Int("message_size", len(body)).
		Msg("message published")

	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}
