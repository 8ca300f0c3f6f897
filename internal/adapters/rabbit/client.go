package rabbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKey is the key reminder messages are published and bound with.
const RoutingKey = "event.reminder"

var (
	// ErrNacked is returned when the broker refuses a published message.
	ErrNacked = errors.New("rabbitmq: message nacked by broker")
	// ErrNoConfirm is returned when the channel did not hand back a confirmation.
	ErrNoConfirm = errors.New("rabbitmq: channel is not in confirm mode")
)

// channel is one open publishing session. Publish returns only after the
// broker confirmed the message.
type channel interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// confirmation is the part of *amqp.DeferredConfirmation a publish waits on.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Client publishes JSON messages to a durable direct exchange bound to one
// queue. A session closed by the broker or the network is replaced on the
// next Publish.
type Client struct {
	mu       sync.Mutex
	dial     func() (channel, error)
	session  channel
	exchange string
	logger   *slog.Logger
}

// Dial connects to url and declares the exchange, the queue and their binding.
func Dial(url, exchange, queue string, logger *slog.Logger) (*Client, error) {
	c := newClient(func() (channel, error) {
		s, err := openSession(url, exchange, queue)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, exchange, logger)

	s, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.session = s

	logger.Info("rabbitmq initialized", "exchange", exchange, "queue", queue)
	return c, nil
}

func newClient(dial func() (channel, error), exchange string, logger *slog.Logger) *Client {
	return &Client{dial: dial, exchange: exchange, logger: logger}
}

// Publish sends body as a persistent JSON message and waits for the broker
// confirm. A message that failed on a closed session is sent once more on a
// fresh one.
func (c *Client) Publish(ctx context.Context, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		s, err := c.currentSession()
		if err != nil {
			return err
		}
		err = s.Publish(ctx, c.exchange, RoutingKey, msg)
		if err == nil {
			c.logger.Debug("message published", "exchange", c.exchange, "bytes", len(body))
			return nil
		}
		lastErr = err
		if !errors.Is(err, amqp.ErrClosed) && !s.IsClosed() {
			break
		}
		c.logger.Warn("rabbitmq session closed, redialing", "exchange", c.exchange, "error", err)
		c.dropSession()
	}
	return fmt.Errorf("publish to %s: %w", c.exchange, lastErr)
}

// currentSession returns the open session, dialing a new one when the last
// one was closed. Callers hold c.mu.
func (c *Client) currentSession() (channel, error) {
	if c.session != nil && !c.session.IsClosed() {
		return c.session, nil
	}
	c.dropSession()
	s, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.session = s
	c.logger.Info("rabbitmq session reopened", "exchange", c.exchange)
	return s, nil
}

func (c *Client) dropSession() {
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
}

// Close closes the session and its connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropSession()
	c.logger.Info("rabbitmq connection closed")
}

// session owns one connection and one confirm-mode channel.
type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func openSession(url, exchange, queue string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &session{conn: conn, ch: ch}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeDirect,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(
		queue,
		RoutingKey,
		exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

func (s *session) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	dc, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return err
	}
	if dc == nil {
		return ErrNoConfirm
	}
	return awaitConfirm(ctx, dc)
}

func (s *session) IsClosed() bool {
	return s.conn.IsClosed() || s.ch.IsClosed()
}

func (s *session) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}

// awaitConfirm blocks until the broker acks or nacks the message, or ctx ends.
func awaitConfirm(ctx context.Context, dc confirmation) error {
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await publisher confirm: %w", err)
	}
	if !acked {
		return ErrNacked
	}
	return nil
}
