package cache

import (
	"context"
	"encoding/json"
	"time"

	"studio-booking/internal/model"

	"github.com/redis/go-redis/v9"
)

type RedisScheduleCache interface {
	// 獲取：讀取快取的未來課程列表，miss 時回傳 false
	GetUpcoming(ctx context.Context) ([]*model.Session, bool, error)
	// 寫入：快取未來課程列表
	SetUpcoming(ctx context.Context, sessions []*model.Session, ttl time.Duration) error
	// 失效：任何名額異動後呼叫
	InvalidateUpcoming(ctx context.Context) error
	// 結算鎖：確保同一時間只有一個請求執行結算掃描
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

type RedisScheduleCacheImpl struct {
	client *redis.Client
}

func NewRedisScheduleCache(client *redis.Client) RedisScheduleCache {
	return &RedisScheduleCacheImpl{
		client: client,
	}
}

func (c *RedisScheduleCacheImpl) upcomingKey() string {
	return "schedule:upcoming"
}

func (c *RedisScheduleCacheImpl) sweepLockKey() string {
	return "schedule:sweep:lock"
}

func (c *RedisScheduleCacheImpl) GetUpcoming(ctx context.Context) ([]*model.Session, bool, error) {
	payload, err := c.client.Get(ctx, c.upcomingKey()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var sessions []*model.Session
	if err := json.Unmarshal(payload, &sessions); err != nil {
		// stale or corrupt payload, treat as a miss
		return nil, false, nil
	}

	return sessions, true, nil
}

func (c *RedisScheduleCacheImpl) SetUpcoming(ctx context.Context, sessions []*model.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.upcomingKey(), payload, ttl).Err()
}

func (c *RedisScheduleCacheImpl) InvalidateUpcoming(ctx context.Context) error {
	return c.client.Del(ctx, c.upcomingKey()).Err()
}

func (c *RedisScheduleCacheImpl) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.sweepLockKey(), 1, ttl).Result()
}

func (c *RedisScheduleCacheImpl) ReleaseSweepLock(ctx context.Context) error {
	return c.client.Del(ctx, c.sweepLockKey()).Err()
}
