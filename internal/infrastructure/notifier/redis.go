package notifier

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"trade_pilot/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultChannel = "trade_pilot:events"

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher mirrors every event as JSON onto a pub/sub channel.
type RedisPublisher struct {
	client  publisher
	channel string
}

func NewRedisPublisher(client publisher) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: DefaultChannel,
	}
}

func (p *RedisPublisher) WithChannel(channel string) *RedisPublisher {
	if channel != "" {
		p.channel = channel
	}
	return p
}

func (p *RedisPublisher) Run(ctx context.Context, events <-chan entity.Event) error {
	return drain(ctx, events, "redis publish", p.Publish)
}

func (p *RedisPublisher) Publish(ctx context.Context, e entity.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}

	return nil
}
