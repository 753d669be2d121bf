package namespace

import (
	"context"
	"errors"
	"fmt"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/redis/go-redis/v9"
)

const defaultKey = "bindtoken:namespace"

var (
	ErrNotFound         = errors.New("namespace not found")
	ErrCorrupt          = errors.New("stored namespace corrupt")
	ErrRedisUnavailable = errors.New("namespace redis unavailable")
)

// Store holds a single namespace value.
type Store interface {
	// Load returns the stored namespace or ErrNotFound.
	Load(ctx context.Context) (string, error)
	// StoreIfAbsent writes ns unless a value already exists and returns whichever
	// value is stored afterwards.
	StoreIfAbsent(ctx context.Context, ns string) (string, error)
}

// RedisStore keeps the namespace under one Redis key with no expiry.
type RedisStore struct {
	redis redis.UniversalClient
	key   string
}

func NewRedisStore(redisClient redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = defaultKey
	}
	return &RedisStore{
		redis: redisClient,
		key:   key,
	}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	raw, err := s.redis.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	ns, err := goBindToken.ParseNamespace(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return ns, nil
}

func (s *RedisStore) StoreIfAbsent(ctx context.Context, ns string) (string, error) {
	canonical, err := goBindToken.ParseNamespace(ns)
	if err != nil {
		return "", err
	}

	ok, err := s.redis.SetNX(ctx, s.key, canonical, 0).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ok {
		return canonical, nil
	}
	return s.Load(ctx)
}

// Provision returns the stored namespace, generating and storing a new one when
// none exists. A corrupt stored value is reported, never replaced.
func Provision(ctx context.Context, store Store) (string, error) {
	if store == nil {
		return "", errors.New("nil namespace store")
	}

	ns, err := store.Load(ctx)
	if err == nil {
		return ns, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	fresh, err := goBindToken.GenerateNamespace()
	if err != nil {
		return "", err
	}
	return store.StoreIfAbsent(ctx, fresh)
}
