package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/cache"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/storage/mq"
)

// StartAlarmFiredConsumer 消费触发消息：完成平台侧送达记账并写回执。
// 真正把铃声推到设备是平台的事，这里只保证记账恰好一次。
func StartAlarmFiredConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.AlarmFiredMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal alarm fired message: %w", err)
		}

		// 幂等性检查：SETNX 原子地标记正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败继续处理，宁可重复也不丢
		} else if !processed {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("alarm_id", msg.AlarmID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		deliveredAt := time.Now()
		if t, err := time.Parse(time.RFC3339, msg.FiredAt); err == nil {
			deliveredAt = t
		}

		if err := cache.MarkDelivered(ctx, msg.NotificationHandle, deliveredAt); err != nil {
			// 回执写失败允许重试，先取消处理标记
			if uerr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); uerr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(uerr),
				)
			}
			return fmt.Errorf("failed to record delivery receipt: %w", err)
		}

		logger.Logger.Info("Alarm delivery recorded",
			zap.String("alarm_id", msg.AlarmID),
			zap.String("notification_handle", msg.NotificationHandle),
			zap.String("mode", msg.Mode),
			zap.Bool("one_shot", msg.OneShot),
		)

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "alarm.fired",
		ConsumerTag:   "alarm_fired_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAlarmDismissedConsumer 消费解除消息：清掉送达回执，
// 平台侧据此撤下还挂着的可见通知。
func StartAlarmDismissedConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.AlarmDismissedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal alarm dismissed message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		// 句柄未知（回执早已过期）也算成功，解除是幂等的
		if err := cache.ClearDelivered(ctx, msg.NotificationHandle); err != nil {
			logger.Logger.Warn("Failed to clear delivery receipt",
				zap.String("notification_handle", msg.NotificationHandle),
				zap.Error(err),
			)
		}

		logger.Logger.Info("Alarm dismissal recorded",
			zap.String("notification_handle", msg.NotificationHandle),
			zap.String("dismissed_at", msg.DismissedAt),
		)

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "alarm.dismissed",
		ConsumerTag:   "alarm_dismissed_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"alarm_fired", StartAlarmFiredConsumer},
		{"alarm_dismissed", StartAlarmDismissedConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()

	logger.Logger.Info("All consumers started")
}
