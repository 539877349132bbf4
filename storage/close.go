package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/storage/mq"
	"github.com/deadpanpulley/alarm-nosnooze/storage/redis"
)

// Close 优雅关闭所有存储连接
// 关闭顺序：MQ -> Redis
// 先停止收发消息，再关闭保存闹钟列表的缓存连接
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	} else {
		logger.Logger.Info("Message queue closed successfully")
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	} else {
		logger.Logger.Info("Redis connection closed successfully")
	}

	logger.Logger.Info("All storage connections closed")
}
