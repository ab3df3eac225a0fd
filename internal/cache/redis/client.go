package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/pkg/logger"
)

// Client caches dashboard stats so repeated renders don't re-run the
// aggregate queries. The cache is best-effort: every failure degrades to a
// direct ledger query.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("stats cache initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetStats(ctx context.Context, key string, stats any, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := c.client.Set(ctx, "stats:"+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}

	logger.Debug("stats cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetStats(ctx context.Context, key string, stats any) (bool, error) {
	data, err := c.client.Get(ctx, "stats:"+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cached stats: %w", err)
	}

	if err := json.Unmarshal(data, stats); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}

	logger.Debug("stats cache hit", zap.String("key", key))
	return true, nil
}
