package store

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

// RedisStore 把整张闹钟列表作为一个 JSON 文档存在单个 key 下。
// 顺序即存储顺序，evaluator 按这个顺序扫描。
type RedisStore struct {
	key string
}

func NewRedisStore() *RedisStore {
	return &RedisStore{
		key: redis.Key(config.Cfg.AlarmStoreKey),
	}
}

func (s *RedisStore) GetAll(ctx context.Context) ([]model.Alarm, error) {
	raw, err := redis.Client().Get(ctx, s.key).Bytes()
	if err == goredis.Nil {
		return []model.Alarm{}, nil // key 不存在视为空列表
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}

	alarms, err := DecodeAlarms(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}
	return alarms, nil
}

func (s *RedisStore) SaveAll(ctx context.Context, alarms []model.Alarm) error {
	raw, err := EncodeAlarms(alarms)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}

	// 整体替换，失败时旧文档原样保留
	if err := redis.Client().Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.StorageFailure, err)
	}
	return nil
}

// EncodeAlarms / DecodeAlarms 是存储的线格式，单独拆出来便于测试回环
func EncodeAlarms(alarms []model.Alarm) ([]byte, error) {
	if alarms == nil {
		alarms = []model.Alarm{}
	}
	return json.Marshal(alarms)
}

func DecodeAlarms(raw []byte) ([]model.Alarm, error) {
	var alarms []model.Alarm
	if err := json.Unmarshal(raw, &alarms); err != nil {
		return nil, err
	}
	if alarms == nil {
		alarms = []model.Alarm{}
	}
	return alarms, nil
}
