package notify

import (
	"context"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// 交换机与路由键。alarm.fired.<mode> 让平台侧可以按挑战类型分流。
const (
	Exchange = "alarm.topic"

	FiredRoutingPrefix  = "alarm.fired"
	DismissedRoutingKey = "alarm.dismissed"
)

// Notifier 通知能力的边界。平台负责真正把铃声送到用户面前，
// 这里只关心投递请求和撤回。
type Notifier interface {
	// Ready 检查通知能力当前是否可用，布防前调用
	Ready(ctx context.Context) error

	// Deliver 投递一次响铃通知，返回通知句柄。
	// 失败时调用方不得把这一分钟记为已触发。
	Deliver(ctx context.Context, alarm model.Alarm, messageID string) (handle string, err error)

	// Dismiss 撤回句柄对应的通知。句柄未知时静默成功，解除流程不被阻断。
	Dismiss(ctx context.Context, handle string) error
}
