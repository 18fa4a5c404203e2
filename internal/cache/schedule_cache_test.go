package cache_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"studio-booking/config"
	"studio-booking/internal/cache"
	"studio-booking/internal/database"
	"studio-booking/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to test redis: %v", err)
	}
	testRdb = rdb
	defer rdb.Close()

	code := m.Run()
	os.Exit(code)
}

func clearRedis(ctx context.Context) {
	if err := testRdb.FlushDB(ctx).Err(); err != nil {
		panic(err)
	}
}

func TestScheduleCache_Upcoming(t *testing.T) {
	ctx := context.Background()
	scheduleCache := cache.NewRedisScheduleCache(testRdb)
	clearRedis(ctx)
	t.Cleanup(func() {
		clearRedis(ctx)
	})

	t.Run("miss on empty cache", func(t *testing.T) {
		defer clearRedis(ctx)
		sessions, hit, err := scheduleCache.GetUpcoming(ctx)
		assert.NoError(t, err)
		assert.False(t, hit)
		assert.Nil(t, sessions)
	})

	t.Run("set then get round trip", func(t *testing.T) {
		defer clearRedis(ctx)
		stored := []*model.Session{
			{ID: 1, StartsAt: time.Date(2026, 10, 1, 18, 30, 0, 0, time.UTC), Capacity: 5, SpotsLeft: 3},
			{ID: 2, StartsAt: time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), Capacity: 8, SpotsLeft: 8},
		}
		require.NoError(t, scheduleCache.SetUpcoming(ctx, stored, time.Minute))

		sessions, hit, err := scheduleCache.GetUpcoming(ctx)
		assert.NoError(t, err)
		assert.True(t, hit)
		require.Len(t, sessions, 2)
		assert.Equal(t, 1, sessions[0].ID)
		assert.Equal(t, 3, sessions[0].SpotsLeft)
	})

	t.Run("invalidate clears the entry", func(t *testing.T) {
		defer clearRedis(ctx)
		require.NoError(t, scheduleCache.SetUpcoming(ctx, []*model.Session{{ID: 1}}, time.Minute))
		require.NoError(t, scheduleCache.InvalidateUpcoming(ctx))

		_, hit, err := scheduleCache.GetUpcoming(ctx)
		assert.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("corrupt payload is a miss", func(t *testing.T) {
		defer clearRedis(ctx)
		require.NoError(t, testRdb.Set(ctx, "schedule:upcoming", "not json", time.Minute).Err())

		_, hit, err := scheduleCache.GetUpcoming(ctx)
		assert.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestScheduleCache_SweepLock(t *testing.T) {
	ctx := context.Background()
	scheduleCache := cache.NewRedisScheduleCache(testRdb)
	clearRedis(ctx)
	t.Cleanup(func() {
		clearRedis(ctx)
	})

	t.Run("only the first holder acquires", func(t *testing.T) {
		defer clearRedis(ctx)
		locked, err := scheduleCache.AcquireSweepLock(ctx, time.Minute)
		assert.NoError(t, err)
		assert.True(t, locked)

		locked, err = scheduleCache.AcquireSweepLock(ctx, time.Minute)
		assert.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("release frees the lock", func(t *testing.T) {
		defer clearRedis(ctx)
		locked, err := scheduleCache.AcquireSweepLock(ctx, time.Minute)
		assert.NoError(t, err)
		assert.True(t, locked)

		require.NoError(t, scheduleCache.ReleaseSweepLock(ctx))

		locked, err = scheduleCache.AcquireSweepLock(ctx, time.Minute)
		assert.NoError(t, err)
		assert.True(t, locked)
	})
}
