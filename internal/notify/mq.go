package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/storage/mq"
)

// MQNotifier 把响铃通知投进 RabbitMQ，worker 进程消费后完成平台侧送达。
// 句柄是投递时生成的 UUID，解除时作为撤回消息的主键。
type MQNotifier struct{}

func NewMQNotifier() *MQNotifier {
	return &MQNotifier{}
}

func (n *MQNotifier) Ready(ctx context.Context) error {
	conn := mq.Connection()
	if conn == nil || conn.IsClosed() {
		return fmt.Errorf("%w: RabbitMQ connection down", errors.CapabilityUnavailable)
	}
	return nil
}

func (n *MQNotifier) Deliver(ctx context.Context, alarm model.Alarm, messageID string) (string, error) {
	handle := uuid.NewString()

	msg := model.AlarmFiredMessage{
		MessageID:          messageID,
		AlarmID:            alarm.ID,
		Label:              alarm.Label,
		Mode:               string(alarm.Mode),
		NotificationHandle: handle,
		FiredAt:            time.Now().Format(time.RFC3339),
		OneShot:            alarm.IsOneShot(),
	}

	routingKey := FiredRoutingPrefix + "." + string(alarm.Mode)
	if err := mq.PublishMessage(Exchange, routingKey, msg); err != nil {
		logger.Logger.Error("Failed to publish alarm fired message",
			zap.String("alarm_id", alarm.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", errors.DeliveryFailure, err)
	}

	logger.Logger.Info("Alarm fired message published",
		zap.String("alarm_id", alarm.ID),
		zap.String("notification_handle", handle),
		zap.String("routing_key", routingKey),
	)
	return handle, nil
}

func (n *MQNotifier) Dismiss(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}

	msg := model.AlarmDismissedMessage{
		MessageID:          uuid.NewString(),
		NotificationHandle: handle,
		DismissedAt:        time.Now().Format(time.RFC3339),
	}

	if err := mq.PublishMessage(Exchange, DismissedRoutingKey, msg); err != nil {
		// 撤回失败不阻断解除，通知最终会被平台侧超时清理
		logger.Logger.Warn("Failed to publish alarm dismissed message",
			zap.String("notification_handle", handle),
			zap.Error(err),
		)
		return nil
	}
	return nil
}
