package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockmaster/internal/core"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	dashboardTTL     = 60 * time.Second
	dashboardLockTTL = 5 * time.Second
)

// DashboardCache keeps per-owner dashboard snapshots in Redis for a short
// TTL and collapses concurrent misses into a single computation behind a
// redislock. All Redis failures degrade to computing directly; the cache
// is never a correctness dependency.
type DashboardCache struct {
	rdb    *redis.Client
	locker *redislock.Client
}

// NewDashboardCache wraps rdb. A nil client yields a cache that always
// computes, which is how the server runs when REDIS_URL is not set.
func NewDashboardCache(rdb *redis.Client) *DashboardCache {
	c := &DashboardCache{rdb: rdb}
	if rdb != nil {
		c.locker = redislock.New(rdb)
	}
	return c
}

// Get returns the owner's dashboard from Redis, or computes and stores it
// on a miss.
func (c *DashboardCache) Get(ctx context.Context, ownerID int, compute func(context.Context) (*core.Dashboard, error)) (*core.Dashboard, error) {
	if c == nil || c.rdb == nil {
		return compute(ctx)
	}

	key := fmt.Sprintf("dashboard:%d", ownerID)
	if dash, ok := c.lookup(ctx, key); ok {
		return dash, nil
	}

	lock, err := c.locker.Obtain(ctx, "lock:"+key, dashboardLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		if err != redislock.ErrNotObtained {
			logrus.WithError(err).Warn("dashboard cache: lock unavailable, computing directly")
		}
		return compute(ctx)
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	// The lock holder ahead of us may have stored the key while we waited.
	if dash, ok := c.lookup(ctx, key); ok {
		return dash, nil
	}

	dash, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, dash)
	return dash, nil
}

func (c *DashboardCache) lookup(ctx context.Context, key string) (*core.Dashboard, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("dashboard cache: read failed")
		}
		return nil, false
	}
	var dash core.Dashboard
	if err := json.Unmarshal([]byte(val), &dash); err != nil {
		logrus.WithError(err).Warn("dashboard cache: discarding unreadable entry")
		return nil, false
	}
	return &dash, true
}

func (c *DashboardCache) store(ctx context.Context, key string, dash *core.Dashboard) {
	payload, err := json.Marshal(dash)
	if err != nil {
		logrus.WithError(err).Warn("dashboard cache: marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, key, payload, dashboardTTL).Err(); err != nil {
		logrus.WithError(err).Warn("dashboard cache: write failed")
	}
}
