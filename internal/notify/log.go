package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
)

// LogNotifier 只打日志，不依赖 MQ。开发环境和测试用。
// ReadyErr / DeliverErr 注入故障，测试布防降级和触发重试路径。
type LogNotifier struct {
	mu        sync.Mutex
	delivered []string
	dismissed []string

	ReadyErr   error
	DeliverErr error
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Ready(ctx context.Context) error {
	return n.ReadyErr
}

func (n *LogNotifier) Deliver(ctx context.Context, alarm model.Alarm, messageID string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.DeliverErr != nil {
		return "", n.DeliverErr
	}

	handle := uuid.NewString()
	n.delivered = append(n.delivered, alarm.ID)

	logger.Logger.Info("Alarm notification (log only)",
		zap.String("alarm_id", alarm.ID),
		zap.String("label", alarm.Label),
		zap.String("notification_handle", handle),
	)
	return handle, nil
}

func (n *LogNotifier) Dismiss(ctx context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dismissed = append(n.dismissed, handle)
	return nil
}

// Delivered 返回已投递的闹钟 ID 列表（按投递顺序）
func (n *LogNotifier) Delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.delivered...)
}

// Dismissed 返回已撤回的句柄列表
func (n *LogNotifier) Dismissed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.dismissed...)
}
