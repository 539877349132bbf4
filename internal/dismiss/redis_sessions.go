package dismiss

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

const sessionPrefix = "session"

// RedisSessionStore 每个会话一个 key，带 TTL。
// 没人来解除的会话过期自动消失，不需要单独的清理任务。
type RedisSessionStore struct{}

func NewRedisSessionStore() *RedisSessionStore {
	return &RedisSessionStore{}
}

func (s *RedisSessionStore) Get(ctx context.Context, alarmID string) (*model.DismissalSession, error) {
	key := redis.Key(sessionPrefix, alarmID)

	raw, err := redis.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}

	var sess model.DismissalSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *model.DismissalSession) error {
	key := redis.Key(sessionPrefix, session.AlarmID)

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}

	ttl := time.Duration(config.Cfg.SessionTTLHours) * time.Hour
	if err := redis.Client().Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, alarmID string) error {
	key := redis.Key(sessionPrefix, alarmID)
	return redis.Client().Del(ctx, key).Err()
}
