package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/promovista/promovista-backend/internal/platform/logger"
)

// BaselineLocker serializes recalculations of the same baseline.
// Acquire returns ok=false when another calculation holds the lock;
// release is safe to call regardless.
type BaselineLocker interface {
	Acquire(ctx context.Context, baselineID uuid.UUID) (release func(), ok bool, err error)
	Close() error
}

// compare-and-delete so a lock that expired mid-calculation is never
// released out from under its next holder
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type baselineLocker struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewBaselineLocker(log *logger.Logger, addr string, ttl time.Duration) (BaselineLocker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
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

	return &baselineLocker{
		log: log.With("service", "BaselineLocker"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (l *baselineLocker) Acquire(ctx context.Context, baselineID uuid.UUID) (func(), bool, error) {
	key := "baseline:calc:" + baselineID.String()
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire baseline lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.rdb.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.log.Warn("baseline lock release failed", "baseline_id", baselineID, "error", err)
		}
	}
	return release, true, nil
}

func (l *baselineLocker) Close() error {
	return l.rdb.Close()
}

// NoopLocker always grants the lock. Used when Redis is not configured:
// the engine then relies on the optimistic status transition alone.
type NoopLocker struct{}

func (NoopLocker) Acquire(ctx context.Context, baselineID uuid.UUID) (func(), bool, error) {
	return func() {}, true, nil
}

func (NoopLocker) Close() error { return nil }
