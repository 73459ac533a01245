// Package redis wraps go-redis client construction with a connection check
// so a misconfigured cache address fails at startup, not on the first
// status lookup.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings the status cache needs. Values
// come from the service configuration; env mapping happens there.
type Config struct {
	Address  string
	Password string
	DB       int
}

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

// connectionTimeout bounds the startup ping.
const connectionTimeout = 5 * time.Second

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
