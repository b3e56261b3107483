package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ключи кэша редиректов в Redis имеют вид redirect:{shortCode}
const keyPrefix = "redirect:"

// opTimeout ограничивает каждую операцию с Redis, чтобы медленный кэш
// не задерживал горячий путь дольше бюджета промаха
const opTimeout = 100 * time.Millisecond

// RedisCache реализует ResolutionCache поверх Redis с TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisClient создает и проверяет подключение к Redis
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisCache создает новый Redis-кэш резолюции
func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get возвращает закэшированный URL назначения. Любая ошибка бэкенда,
// включая таймаут, деградирует в промах.
func (c *RedisCache) Get(ctx context.Context, shortCode string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, keyPrefix+shortCode).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.log.Warn("cache get failed, treating as miss",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return "", false
	}

	return val, true
}

// Set сохраняет URL назначения с настроенным TTL. Ошибки проглатываются.
func (c *RedisCache) Set(ctx context.Context, shortCode, destinationURL string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, keyPrefix+shortCode, destinationURL, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed",
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// Invalidate удаляет запись кэша. Ошибки проглатываются.
func (c *RedisCache) Invalidate(ctx context.Context, shortCode string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, keyPrefix+shortCode).Err(); err != nil {
		c.log.Warn("cache invalidate failed",
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}
