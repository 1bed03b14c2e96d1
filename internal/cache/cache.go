package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value cache with a store-wide TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RedisStore keeps entries in redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// Prefix namespaces keys when the redis instance is shared.
	Prefix string
}

// NewRedisStore connects to redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "whiskr:"
	}
	return &RedisStore{client: client, ttl: opts.TTL, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore keeps entries in process with bigcache.
type MemoryStore struct {
	cache *bigcache.BigCache
}

func NewMemoryStore(ttl time.Duration) (*MemoryStore, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.HardMaxCacheSize = 64 // MB
	cfg.Verbose = false

	c, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := s.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("memory cache get: %w", err)
	}
	return data, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	return s.cache.Set(key, value)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	err := s.cache.Delete(key)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("memory cache delete: %w", err)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return s.cache.Close()
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
