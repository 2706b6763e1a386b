// Package cache wraps Redis for short-lived response caching. A Service
// without a client is valid and behaves as an always-missing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/metrics"
)

// Keys used by the API.
const (
	KeyDashboard = "metro:dashboard"
)

// ErrMiss is returned by Get when the key is absent or caching is disabled.
var ErrMiss = errors.New("cache miss")

type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redisURL. An empty URL yields a disabled cache.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Service, error) {
	if redisURL == "" {
		return &Service{ttl: ttl}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return &Service{ttl: ttl}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return &Service{ttl: ttl}, fmt.Errorf("redis ping failed: %w", err)
	}
	log.WithField("addr", opts.Addr).Info("Redis connected")
	return &Service{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

func (s *Service) Available() bool {
	return s != nil && s.client != nil
}

// Get decodes the cached value of key into dest.
func (s *Service) Get(ctx context.Context, key string, dest any) error {
	if !s.Available() {
		return ErrMiss
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheResults.WithLabelValues("miss").Inc()
		return ErrMiss
	}
	if err != nil {
		return err
	}
	metrics.CacheResults.WithLabelValues("hit").Inc()
	return json.Unmarshal(val, dest)
}

// Set stores value under key for the configured TTL.
func (s *Service) Set(ctx context.Context, key string, value any) error {
	if !s.Available() || s.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if !s.Available() {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

func (s *Service) Close() error {
	if !s.Available() {
		return nil
	}
	return s.client.Close()
}
