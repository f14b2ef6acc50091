// Package amqp publishes and consumes the RabbitMQ messages exchanged
// between the API server and the digest worker.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishRetries = 3
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	digestKey    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient connects and declares a durable direct exchange, the expense
// queue (bound by its own name) and the digest queue (bound by digestKey).
func NewClient(url, exchangeName, queueName, digestKey string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		digestKey:    digestKey,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := c.setup(channel); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queues: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

func (c *Client) setup(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	for _, q := range []string{c.queueName, c.digestKey} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}
	return nil
}

func (c *Client) reconnect() error {
	c.mu.Lock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn, c.channel = nil, nil
	c.mu.Unlock()
	return c.connect()
}

// PublishExpenseRecorded announces a stored expense on the expense queue.
func (c *Client) PublishExpenseRecorded(ctx context.Context, id, userID string) error {
	body, err := NewExpenseRecordedMessage(id, userID).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.queueName, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense recorded message", "id", id, "user_id", userID, "exchange", c.exchangeName)
	return nil
}

// PublishSummaryDigest publishes a summary digest under the digest key.
func (c *Client) PublishSummaryDigest(ctx context.Context, msg *SummaryDigestMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := c.publish(ctx, c.digestKey, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published summary digest", "user_id", msg.UserID, "routing_key", c.digestKey)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish to %s: %w", routingKey, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		c.mu.Lock()
		ch := c.channel
		c.mu.Unlock()
		if ch == nil {
			lastErr = errors.New("channel not open")
		} else {
			pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			lastErr = ch.PublishWithContext(pctx, c.exchangeName, routingKey, false, false, amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			})
			cancel()
			if lastErr == nil {
				c.recordSuccess()
				return nil
			}
		}

		if ch != nil && !isConnectionError(lastErr) {
			break
		}
		slog.WarnContext(ctx, "AMQP publish failed, reconnecting", "attempt", attempt+1, "error", lastErr)
		select {
		case <-ctx.Done():
			c.recordFailure()
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}
		if err := c.reconnect(); err != nil {
			lastErr = err
		}
	}

	c.recordFailure()
	return fmt.Errorf("publish message: %w", lastErr)
}

// ConsumeExpenseRecorded delivers expense messages to handler until ctx is
// done. Malformed messages are dropped; handler errors requeue.
func (c *Client) ConsumeExpenseRecorded(ctx context.Context, handler func(context.Context, *ExpenseRecordedMessage) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.New("channel not open")
	}

	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	slog.InfoContext(ctx, "Started consuming expense recorded messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			switch dispatch(ctx, delivery.Body, handler) {
			case ack:
				delivery.Ack(false)
			case requeue:
				delivery.Nack(false, true)
			case drop:
				delivery.Nack(false, false)
			}
		}
	}
}

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

func dispatch(ctx context.Context, body []byte, handler func(context.Context, *ExpenseRecordedMessage) error) outcome {
	msg, err := ExpenseRecordedMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		return drop
	}
	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle message", "id", msg.ID, "user_id", msg.UserID, "error", err)
		return requeue
	}
	slog.InfoContext(ctx, "Processed expense recorded message", "id", msg.ID, "user_id", msg.UserID)
	return ack
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
