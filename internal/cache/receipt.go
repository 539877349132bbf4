package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

const (
	deliveredPrefix = "notify:delivered"

	receiptTTL = 48 * time.Hour
)

// MarkDelivered 记录一次通知送达回执，worker 消费触发消息后写入
func MarkDelivered(ctx context.Context, notificationHandle string, at time.Time) error {
	key := redis.Key(deliveredPrefix, notificationHandle)
	if err := redis.Client().Set(ctx, key, at.Format(time.RFC3339), receiptTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return nil
}

// GetDeliveredAt 查询送达回执，没有回执返回 nil
func GetDeliveredAt(ctx context.Context, notificationHandle string) (*time.Time, error) {
	key := redis.Key(deliveredPrefix, notificationHandle)

	raw, err := redis.Client().Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery receipt: %w", err)
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("bad delivery receipt value: %w", err)
	}
	return &at, nil
}

// ClearDelivered 撤回回执，闹钟解除后清理
func ClearDelivered(ctx context.Context, notificationHandle string) error {
	key := redis.Key(deliveredPrefix, notificationHandle)
	return redis.Client().Del(ctx, key).Err()
}
