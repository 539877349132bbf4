package cache

import (
	"context"
	"time"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

// 通过 SetNX 实现分布式锁。评估器跑在独立进程里，
// 手动触发的扫描和定时扫描可能并发，靠这把锁互斥。
const (
	lockPrefix = "lock"

	evaluateLockKey = "evaluate"
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

// EvaluateLocker 评估临界区的跨进程锁，TTL 兜底持有者崩溃的情况
type EvaluateLocker struct{}

func (EvaluateLocker) TryLock(ctx context.Context) (bool, error) {
	ttl := time.Duration(config.Cfg.EvaluateLockSeconds) * time.Second
	return TryLock(ctx, evaluateLockKey, ttl)
}

func (EvaluateLocker) Unlock(ctx context.Context) error {
	return Unlock(ctx, evaluateLockKey)
}
