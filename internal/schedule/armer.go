package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/utils"
)

// Armer 负责闹钟的布防与撤防。布防是幂等的：总是先撤掉旧的
// 再登记新的，重复布防不会留下两份调度。
type Armer struct {
	notifier notify.Notifier
}

func NewArmer(notifier notify.Notifier) *Armer {
	return &Armer{notifier: notifier}
}

// Arm 布防。预计算下一次触发时刻并登记句柄。
// 通知能力不可用时返回 CapabilityUnavailable，此时调用方仍应保存
// 闹钟的激活意图（is_active=true），但不登记任何调度。
func (a *Armer) Arm(ctx context.Context, alarm *model.Alarm, now time.Time) error {
	a.Disarm(ctx, alarm)

	if err := a.notifier.Ready(ctx); err != nil {
		logger.Logger.Warn("Notification capability unavailable, alarm stays unarmed",
			zap.String("alarm_id", alarm.ID),
			zap.Error(err),
		)
		return errors.CapabilityUnavailable
	}

	next := utils.NextOccurrence(now, alarm.Hour, alarm.Minute, alarm.Days)
	alarm.NextAt = &next
	alarm.ArmedHandle = uuid.NewString()

	logger.Logger.Info("Alarm armed",
		zap.String("alarm_id", alarm.ID),
		zap.String("armed_handle", alarm.ArmedHandle),
		zap.Time("next_at", next),
	)
	return nil
}

// Disarm 撤防。清掉调度句柄和派生状态，对未布防的闹钟调用无害。
func (a *Armer) Disarm(ctx context.Context, alarm *model.Alarm) {
	if alarm.ArmedHandle != "" {
		logger.Logger.Info("Alarm disarmed",
			zap.String("alarm_id", alarm.ID),
			zap.String("armed_handle", alarm.ArmedHandle),
		)
	}

	alarm.ArmedHandle = ""
	alarm.NextAt = nil
	alarm.SnoozedUntil = nil
}
