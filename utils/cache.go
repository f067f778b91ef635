package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates a Redis client for the given DB index. When ping is true the
// connection is verified; an unreachable server is reported but the client is still
// returned so callers that tolerate a missing Redis can keep running.
func NewRedisClient(addr, password string, db int, dialTimeout time.Duration, ping bool) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  dialTimeout,
		WriteTimeout: dialTimeout,
		MaxRetries:   -1,
	})
	if !ping {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}
