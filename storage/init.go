package storage

import (
	"github.com/deadpanpulley/alarm-nosnooze/storage/mq"
	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

// 统一 init storage 层

func Init() error {
	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
