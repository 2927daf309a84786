package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talentdocs/internal/config"
)

// redisPublisher publishes events as JSON messages on Redis Pub/Sub
// channels named after the event (optionally prefixed).
type redisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed publisher and verifies connectivity.
func NewRedis(cfg config.RedisConfig) (Publisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPublisher{client: cli, prefix: cfg.ChannelPrefix}, nil
}

// Publish sends one event. Errors are returned so the caller can log them,
// but callers never treat them as operation failures.
func (p *redisPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Name, err)
	}

	channel := ev.Name
	if p.prefix != "" {
		channel = p.prefix + "." + ev.Name
	}

	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Name, err)
	}
	return nil
}
