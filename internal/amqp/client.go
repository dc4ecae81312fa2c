package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"expensetracker/internal/events"
	"expensetracker/internal/log"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	dialTimeout    = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var errChannelClosed = errors.New("message channel closed")

// Client publishes and consumes expense events over a durable direct exchange.
// The connection is re-established lazily after a failure.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	// connect dials the broker; tests replace it
	connect func() (*amqp091.Connection, *amqp091.Channel, error)

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	breakerMu    sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	if _, err := client.ensureChannel(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) log() *log.Logger {
	if c.logger == nil {
		return log.New(log.DefaultConfig()).WithComponent(log.ComponentAMQP)
	}
	return c.logger
}

// ensureChannel returns the open channel, dialing a new one when needed.
// The dial runs without holding c.mu so a slow broker never stalls
// callers that only need to read or reset the current channel.
func (c *Client) ensureChannel(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	if c.channel != nil && !c.channel.IsClosed() {
		ch := c.channel
		c.mu.Unlock()
		return ch, nil
	}
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	connect := c.connect
	if connect == nil {
		connect = c.dial
	}
	conn, channel, err := connect()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// another caller connected while we were dialing
	if c.channel != nil && !c.channel.IsClosed() {
		if channel != nil {
			channel.Close()
		}
		if conn != nil {
			conn.Close()
		}
		return c.channel, nil
	}
	c.closeLocked()

	c.conn = conn
	c.channel = channel
	return channel, nil
}

func (c *Client) dial() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Dial: amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return conn, channel, nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish sends evt as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, evt events.Event) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, dropping event %s", evt.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel, err := c.ensureChannel(ctx)
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    evt.ID,
			Type:         string(evt.Type),
			Timestamp:    evt.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.reset()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	c.log().DebugContext(ctx, "Published expense event",
		log.FieldOperation, log.OpPublish,
		log.FieldEventID, evt.ID,
		log.FieldEventType, evt.Type,
		log.FieldExpenseID, evt.Expense.ID,
		"exchange", c.exchangeName)

	return nil
}

// Subscribe consumes events until ctx is done, reconnecting with
// exponential backoff when the broker goes away.
func (c *Client) Subscribe(ctx context.Context, handler events.Handler) error {
	attempt := 0
	for {
		started, err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if started {
			attempt = 0
		}

		wait := exponentialBackoff(attempt)
		c.log().WarnContext(ctx, "AMQP consumer interrupted, reconnecting",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork,
			"attempt", attempt+1,
			"backoff", wait)
		c.reset()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		attempt++
	}
}

func (c *Client) consume(ctx context.Context, handler events.Handler) (bool, error) {
	channel, err := c.ensureChannel(ctx)
	if err != nil {
		return false, err
	}

	msgs, err := channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}

	c.log().InfoContext(ctx, "Started consuming expense events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return true, ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return true, errChannelClosed
			}
			c.deliver(ctx, delivery.Body, &delivery, handler)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// deliver decodes body and runs handler. Undecodable messages are dropped,
// handler failures are requeued.
func (c *Client) deliver(ctx context.Context, body []byte, ack acknowledger, handler events.Handler) {
	evt, err := events.Decode(body)
	if err != nil {
		c.log().ErrorContext(ctx, "Failed to decode message", log.FieldError, err)
		ack.Nack(false, false)
		return
	}

	if err := handler(ctx, evt); err != nil {
		c.log().ErrorContext(ctx, "Failed to handle event",
			log.FieldError, err,
			log.FieldEventID, evt.ID,
			log.FieldEventType, evt.Type)
		ack.Nack(false, true)
		return
	}

	ack.Ack(false)
	c.log().DebugContext(ctx, "Processed expense event",
		log.FieldEventID, evt.ID,
		log.FieldEventType, evt.Type,
		log.FieldExpenseID, evt.Expense.ID)
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() error {
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.closeLocked()
	if errors.Is(err, amqp091.ErrClosed) {
		return nil
	}
	return err
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.breakerMu.Lock()
		elapsed := time.Since(c.lastFailure)
		c.breakerMu.Unlock()
		if elapsed > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.breakerMu.Lock()
	c.lastFailure = time.Now()
	c.breakerMu.Unlock()

	failures := atomic.AddInt64(&c.failureCount, 1)
	// a failure while half-open reopens immediately
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

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
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, errChannelClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"EOF",
		"broken pipe",
		"use of closed network connection",
		"channel/connection is not open",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
