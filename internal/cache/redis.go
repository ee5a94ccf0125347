// Package cache publishes alerts to Redis for live consumers and keeps a
// short-lived copy of recent alerts for dashboards that poll out-of-process.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"deauthguard/internal/config"
	"deauthguard/internal/model"
)

type RedisPublisher struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
	limit   int
}

func NewRedisPublisher(ctx context.Context, cfg config.CacheConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 3,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisPublisher{
		client:  client,
		channel: cfg.Channel,
		ttl:     cfg.TTL,
		limit:   cfg.RecentLimit,
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, alert model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	key := fmt.Sprintf("alert:%s:%d", alert.Interface, alert.Timestamp.UnixNano())
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("store alert: %w", err)
	}
	pipe := p.client.Pipeline()
	pipe.LPush(ctx, "alerts:recent", key)
	pipe.LTrim(ctx, "alerts:recent", 0, int64(p.limit-1))
	pipe.Publish(ctx, p.channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
