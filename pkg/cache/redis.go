package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/showcase/pkg/config"
)

const pingTimeout = 2 * time.Second

// RedisClient is the connection shared by the view cache, the product detail
// cache and the session store.
type RedisClient struct {
	client *redis.Client
}

// RedisOptions turns cfg.RedisURL into client options with the pool sized
// for one api or worker process. The connection is named after the service
// so CLIENT LIST tells the two apart.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.ClientName = cfg.ServiceName
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second
	return opts, nil
}

// NewRedisClient connects with RedisOptions(cfg).
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisClientFromOptions(ctx, opts)
}

// NewRedisClientFromOptions opens a client and fails unless the server
// answers PING within pingTimeout.
func NewRedisClientFromOptions(ctx context.Context, opts *redis.Options) (*RedisClient, error) {
	rdb := redis.NewClient(opts)
	rc := &RedisClient{client: rdb}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rc, nil
}

// Ping backs the /health endpoint.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the pool. Safe on a zero RedisClient.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client exposes the raw client for the session store.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
