package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialgraph/models"

	"github.com/go-redis/redis/v8"
)

const PROFILE_KEY_PREFIX = "profile:username:" // Префикс ключей кеша профилей

// ProfileCache кеширует username -> {id, username}. Username неизменяем,
// поэтому инвалидация не нужна, достаточно TTL.
type ProfileCache interface {
	Get(ctx context.Context, username string) (*models.ProfileSummary, error)
	Set(ctx context.Context, profile models.ProfileSummary) error
}

// InitRedis создает клиент и проверяет соединение
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Тест соединения
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func profileKey(username string) string {
	return PROFILE_KEY_PREFIX + username
}

// Get возвращает nil без ошибки, если ключа нет
func (c *RedisProfileCache) Get(ctx context.Context, username string) (*models.ProfileSummary, error) {
	val, err := c.client.Get(ctx, profileKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var profile models.ProfileSummary
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}
	return &profile, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, profile models.ProfileSummary) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return c.client.Set(ctx, profileKey(profile.Username), data, c.ttl).Err()
}
