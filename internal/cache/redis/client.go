// Package redis caches rendered analysis and compliance reports. A cache
// outage degrades to recomputation, never to request failure.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/pkg/logger"
	"github.com/ai-risk-sentinel/backend/pkg/utils"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetReport caches a report under its parameter hash.
func (c *Client) SetReport(ctx context.Context, key string, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report cache: %w", err)
	}

	logger.Debug("Report cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// GetReport loads a cached report into dest, reporting whether it was found.
func (c *Client) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, reportKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	logger.Debug("Report cache hit", zap.String("key", key))
	return true, nil
}

// reportKey hashes the caller-supplied key so arbitrary parameter strings
// stay within redis key conventions.
func reportKey(key string) string {
	return "report:" + utils.HashString(key)
}

// InvalidateReports drops every cached report; called after data loads so
// stale distributions are never served.
func (c *Client) InvalidateReports(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "report:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Report cache invalidated")
	return nil
}
