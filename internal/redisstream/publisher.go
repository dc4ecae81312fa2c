package redisstream

import (
	"context"
	"fmt"

	"expensetracker/internal/events"

	"github.com/redis/go-redis/v9"
)

const eventField = "event"

// Publisher appends events to a redis stream
type Publisher struct {
	client redis.Cmdable
	closer func() error
	stream string
	maxLen int64
}

type PublisherOption func(*Publisher)

// WithMaxLen caps the stream length (approximate trimming)
func WithMaxLen(n int64) PublisherOption {
	return func(p *Publisher) { p.maxLen = n }
}

func NewPublisher(client *redis.Client, stream string, opts ...PublisherOption) *Publisher {
	p := &Publisher{client: client, closer: client.Close, stream: stream}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	body, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{eventField: body},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.stream, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.closer != nil {
		return p.closer()
	}
	return nil
}
