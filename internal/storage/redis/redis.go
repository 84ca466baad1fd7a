package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Client — тонкая обёртка над go-redis, наружу отдаёт только байты.
type Client struct {
	client *redis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     20,
			MinIdleConns: 2,
		}),
	}
}

func (c *Client) Ping(ctx context.Context) error {
	const op = "storage.redis.Ping"

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get returns ErrCacheMiss when the key does not exist.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.redis.Get"

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	const op = "storage.redis.Set"

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) Del(ctx context.Context, key string) error {
	const op = "storage.redis.Del"

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}
