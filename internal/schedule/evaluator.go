package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/utils"
)

// SessionOpener 触发后开启响铃会话的回调，由解除状态机实现
type SessionOpener interface {
	OpenRinging(ctx context.Context, alarm model.Alarm, notificationHandle string, firedAt time.Time) error
}

// Evaluator 触发评估器。每次 Evaluate 是一轮完整的扫描：
// 读整张列表、逐个判定、投递通知、单次写回。
// 进程内用互斥量防重入，跨进程靠 Locker（定时扫描和手动扫描
// 跑在不同进程里）。任何时刻最多一轮评估在进行。
type Evaluator struct {
	mu sync.Mutex

	store    store.AlarmStore
	locker   store.Locker
	notifier notify.Notifier
	sessions SessionOpener
}

func NewEvaluator(st store.AlarmStore, locker store.Locker, notifier notify.Notifier, sessions SessionOpener) *Evaluator {
	return &Evaluator{
		store:    st,
		locker:   locker,
		notifier: notifier,
		sessions: sessions,
	}
}

// Evaluate 执行一轮触发评估。now 由调用方注入，整轮用同一个时刻判定。
// 返回本轮是否有闹钟被触发。另一轮评估在进行时返回 EvaluateBusy。
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time) (bool, error) {
	if !e.mu.TryLock() {
		return false, errors.EvaluateBusy
	}
	defer e.mu.Unlock()

	held, err := e.locker.TryLock(ctx)
	if err != nil {
		return false, errors.StorageFailure
	}
	if !held {
		return false, errors.EvaluateBusy
	}
	defer func() {
		if err := e.locker.Unlock(ctx); err != nil {
			logger.Logger.Warn("Failed to release evaluate lock", zap.Error(err))
		}
	}()

	alarms, err := e.store.GetAll(ctx)
	if err != nil {
		return false, err
	}

	minute := utils.MinuteStart(now)
	fired := false
	dirty := false

	// 按存储顺序扫描。单个闹钟的投递失败只影响它自己，
	// 不中断本轮，也不记 last_triggered_at，下一轮会重试。
	for i := range alarms {
		alarm := &alarms[i]

		if !e.isDue(alarm, now, minute) {
			continue
		}

		// 锁内重读的就是最新状态，触发前再确认一次激活位
		if !alarm.IsActive {
			continue
		}

		messageID := uuid.NewString()
		handle, err := e.notifier.Deliver(ctx, alarm.Clone(), messageID)
		if err != nil {
			logger.Logger.Error("Alarm delivery failed, will retry next pass",
				zap.String("alarm_id", alarm.ID),
				zap.Error(err),
			)
			continue
		}

		fired = true
		dirty = true

		triggeredAt := now
		alarm.LastTriggeredAt = &triggeredAt
		alarm.SnoozedUntil = nil

		if alarm.IsOneShot() {
			// 一次性闹钟触发即停用并撤防
			alarm.IsActive = false
			alarm.ArmedHandle = ""
			alarm.NextAt = nil
		} else {
			next := utils.NextOccurrence(now, alarm.Hour, alarm.Minute, alarm.Days)
			alarm.NextAt = &next
		}
		alarm.UpdatedAt = now

		if e.sessions != nil {
			if err := e.sessions.OpenRinging(ctx, alarm.Clone(), handle, now); err != nil {
				logger.Logger.Error("Failed to open ringing session",
					zap.String("alarm_id", alarm.ID),
					zap.Error(err),
				)
			}
		}

		logger.Logger.Info("Alarm fired",
			zap.String("alarm_id", alarm.ID),
			zap.String("notification_handle", handle),
			zap.Bool("one_shot", alarm.IsOneShot()),
		)
	}

	if dirty {
		if err := e.store.SaveAll(ctx, alarms); err != nil {
			return fired, err
		}
	}

	return fired, nil
}

// isDue 判定闹钟在这一分钟是否应当触发。
// 贪睡中的闹钟不看本来的定义时刻，贪睡到期（含补触发）即到期。
func (e *Evaluator) isDue(alarm *model.Alarm, now, minute time.Time) bool {
	if !alarm.IsActive {
		return false
	}

	// 同一分钟已触发过则跳过，保证每分钟至多一次
	if alarm.LastTriggeredAt != nil && !utils.MinuteStart(*alarm.LastTriggeredAt).Before(minute) {
		return false
	}

	// 评估是尽力而为的，到期那一分钟可能整轮被跳过。
	// 用 >= 判定，错过的贪睡在下一轮补触发并清掉标记，
	// 而不是让过期的 snoozed_until 永远压住正常时刻。
	if alarm.SnoozedUntil != nil {
		return !minute.Before(utils.MinuteStart(*alarm.SnoozedUntil))
	}

	if now.Hour() != alarm.Hour || now.Minute() != alarm.Minute {
		return false
	}

	if alarm.IsOneShot() {
		return true
	}

	weekday := int(now.Weekday())
	for _, d := range alarm.Days {
		if d == weekday {
			return true
		}
	}
	return false
}
