package rate

import "errors"

var (
	// ErrRateLimited is returned when a client has exhausted its rejection budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
