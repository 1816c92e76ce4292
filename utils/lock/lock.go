package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another instance owns the lock
var ErrLockHeld = errors.New("lock held by another instance")

// ErrLockLost is returned when the lock expired or was taken over while held
var ErrLockLost = errors.New("lock lost")

const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const extendLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// Lock keeps a single bot instance trading one wallet. It is a redis key
// set with SETNX whose value is a per-process token.
type Lock struct {
	rdb      redis.Cmdable
	key      string
	token    string
	ttl      time.Duration
	unlockSc *redis.Script
	extendSc *redis.Script
	logger   *zap.Logger
}

// New creates a lock on prefix:name. Nothing is sent to redis until Acquire.
func New(rdb redis.Cmdable, prefix, name string, ttl time.Duration, logger *zap.Logger) *Lock {
	return &Lock{
		rdb:      rdb,
		key:      Key(prefix, name),
		token:    uuid.New().String(),
		ttl:      ttl,
		unlockSc: redis.NewScript(unlockLua),
		extendSc: redis.NewScript(extendLua),
		logger:   logger.Named("lock"),
	}
}

// Key builds the redis key of a lock
func Key(prefix, name string) string {
	if prefix == "" {
		prefix = "deltabot"
	}
	return prefix + ":lock:" + name
}

// Acquire takes the lock or returns ErrLockHeld
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.rdb.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockHeld, l.key)
	}
	l.logger.Info("Lock acquired", zap.String("key", l.key), zap.Duration("ttl", l.ttl))
	return nil
}

// Extend resets the lock TTL, failing with ErrLockLost if the lock is no longer ours
func (l *Lock) Extend(ctx context.Context) error {
	n, err := l.extendSc.Run(ctx, l.rdb, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend lock %s: %w", l.key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLockLost, l.key)
	}
	return nil
}

// Release deletes the lock if it is still ours
func (l *Lock) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.unlockSc.Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil {
		l.logger.Warn("Failed to release lock", zap.String("key", l.key), zap.Error(err))
		return
	}
	l.logger.Info("Lock released", zap.String("key", l.key))
}

// Hold extends the lock every third of its TTL until ctx is done, then
// releases it. It returns an error only if the lock could not be kept.
func (l *Lock) Hold(ctx context.Context) error {
	defer l.Release()

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Extend(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
