package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rejection throttle tuning parameters.
type Config struct {
	MaxRejections int
	Window        time.Duration
	Prefix        string
}

// Limiter counts rejected token presentations per client IP in fixed Redis
// windows.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "btr"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check returns the rejections counted for ip in the current window, and
// ErrRateLimited once that count has used up the budget.
func (l *Limiter) Check(ctx context.Context, ip string) (int, error) {
	count, err := l.Rejections(ctx, ip)
	if err != nil {
		return 0, err
	}
	if count >= l.config.MaxRejections {
		return count, ErrRateLimited
	}
	return count, nil
}

// RecordRejection counts one rejected presentation for ip.
func (l *Limiter) RecordRejection(ctx context.Context, ip string) error {
	count, err := l.incrementWithTTL(ctx, l.key(ip), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRejections) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for ip.
func (l *Limiter) Reset(ctx context.Context, ip string) error {
	if err := l.redis.Del(ctx, l.key(ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Rejections returns the current counter for ip.
func (l *Limiter) Rejections(ctx context.Context, ip string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return l.config.Prefix + ":" + ip
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
