package redislock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
)

// Locker hands out coarse single-holder locks so overlapping population
// allocation runs cannot double-allocate the same week's capacity.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
	Close() error
}

type locker struct {
	log *logger.Logger
	rdb *goredis.Client
}

func New(log *logger.Logger) (Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &locker{log: log.With("service", "RedisLocker"), rdb: rdb}, nil
}

func (l *locker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	if l == nil || l.rdb == nil {
		return nil, false, fmt.Errorf("locker not initialized")
	}
	key := "lock:" + name
	ok, err := l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		if err := l.rdb.Del(context.Background(), key).Err(); err != nil {
			l.log.Warn("Failed to release lock; it will expire on its own", "lock", name, "error", err)
		}
	}
	return release, true, nil
}

func (l *locker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
