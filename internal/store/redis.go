package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"replymate/internal/domain"
)

// RedisBackend stores each profile as one JSON string under {prefix}:profile:{userID}.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisWithClient(client, cfg.Prefix), nil
}

func NewRedisWithClient(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "replymate"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(userID string) string {
	return fmt.Sprintf("%s:profile:%s", r.prefix, userID)
}

func (r *RedisBackend) Load(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("decode profile: %w", err)
	}
	return p, true, nil
}

func (r *RedisBackend) Save(ctx context.Context, userID string, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(userID), raw, 0).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
