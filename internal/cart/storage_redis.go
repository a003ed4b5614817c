package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sorodev/marketplace-client/pkg/config"
)

const redisKeyPrefix = "market:cart"

// RedisStorage keeps the cart snapshot in Redis, keyed by session.
type RedisStorage struct {
	client    *redis.Client
	sessionID string
}

// NewRedisStorage connects to Redis per the supplied config and verifies
// connectivity.
func NewRedisStorage(ctx context.Context, cfg config.RedisConfig, sessionID string) (*RedisStorage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStorage{client: client, sessionID: sessionID}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (s *RedisStorage) key() string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, s.sessionID)
}

// Load reads the persisted snapshot. A missing key is an empty cart; an
// undecodable payload reports ErrCorruptSnapshot.
func (s *RedisStorage) Load(ctx context.Context) ([]Item, error) {
	payload, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, ErrCorruptSnapshot
	}
	return items, nil
}

// Save rewrites the snapshot for this session. The record has no TTL;
// the cart survives until cleared.
func (s *RedisStorage) Save(ctx context.Context, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key(), payload, 0).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
