package dismiss

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/config"
	"github.com/deadpanpulley/alarm-nosnooze/internal/challenge"
	"github.com/deadpanpulley/alarm-nosnooze/internal/clock"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/utils"
)

// Machine 解除状态机：ringing → challenge_active → dismissed。
// 前进方向单向，dismissed 是终态。贪睡从前两个状态都可走，
// 会关闭当前会话并把闹钟改期。
type Machine struct {
	sessions SessionStore
	alarms   store.AlarmStore
	locker   store.Locker
	notifier notify.Notifier
	clk      clock.Clock
}

func NewMachine(sessions SessionStore, alarms store.AlarmStore, locker store.Locker, notifier notify.Notifier, clk clock.Clock) *Machine {
	return &Machine{
		sessions: sessions,
		alarms:   alarms,
		locker:   locker,
		notifier: notifier,
		clk:      clk,
	}
}

// OpenRinging 触发后开启响铃会话，评估器在投递成功后调用。
// 同一闹钟的旧会话直接被新会话覆盖。
func (m *Machine) OpenRinging(ctx context.Context, alarm model.Alarm, notificationHandle string, firedAt time.Time) error {
	sess := &model.DismissalSession{
		AlarmID:            alarm.ID,
		State:              model.DismissalRinging,
		Mode:               alarm.Mode,
		NotificationHandle: notificationHandle,
		FiredAt:            firedAt,
		UpdatedAt:          firedAt,
	}

	// 挑战实例开在 ringing 阶段就生成好，qr_code 需要闹钟上的绑定引用
	inst, err := challenge.Generate(alarm)
	if err != nil {
		return err
	}
	sess.Challenge = inst

	return m.sessions.Save(ctx, sess)
}

// Get 查询会话，不存在返回 SessionNotFound
func (m *Machine) Get(ctx context.Context, alarmID string) (*model.DismissalSession, error) {
	sess, err := m.sessions.Get(ctx, alarmID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.SessionNotFound
	}
	return sess, nil
}

// Open 用户进入挑战界面：ringing → challenge_active。
// 已经在 challenge_active 的会话原样返回（客户端重连常见）。
func (m *Machine) Open(ctx context.Context, alarmID string) (*model.DismissalSession, error) {
	sess, err := m.Get(ctx, alarmID)
	if err != nil {
		return nil, err
	}

	switch sess.State {
	case model.DismissalRinging:
		sess.State = model.DismissalChallengeActive
		sess.UpdatedAt = m.clk.Now()
		if err := m.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	case model.DismissalChallengeActive:
		return sess, nil
	default:
		return nil, errors.SessionStateInvalid
	}
}

// Attempt 作答。答对进入终态并撤回通知；答错按模式策略处理：
// quiz 和 find_button 每次失败都换新实例，captcha 连续失败满
// 阈值才换，qr_code 永远用绑定的那个期望值。
func (m *Machine) Attempt(ctx context.Context, alarmID, answer string) (*model.DismissalSession, error) {
	sess, err := m.Get(ctx, alarmID)
	if err != nil {
		return nil, err
	}

	if sess.State != model.DismissalChallengeActive {
		return nil, errors.SessionStateInvalid
	}

	now := m.clk.Now()

	if challenge.Verify(sess.Challenge, answer) {
		sess.State = model.DismissalDismissed
		sess.Failures = 0
		sess.UpdatedAt = now
		if err := m.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}

		// 句柄未知时撤回也静默成功，解除不会因此卡住
		if err := m.notifier.Dismiss(ctx, sess.NotificationHandle); err != nil {
			logger.Logger.Warn("Notification dismiss failed",
				zap.String("alarm_id", alarmID),
				zap.Error(err),
			)
		}

		logger.Logger.Info("Alarm dismissed",
			zap.String("alarm_id", alarmID),
			zap.Int("failures", sess.Failures),
		)
		return sess, nil
	}

	sess.Failures++
	sess.UpdatedAt = now

	switch challenge.PolicyFor(sess.Mode) {
	case challenge.RetryNewInstance:
		if err := m.regenerate(sess); err != nil {
			return nil, err
		}
	case challenge.RetrySameUntilThreshold:
		if sess.Failures >= config.Cfg.CaptchaRegenFailures {
			if err := m.regenerate(sess); err != nil {
				return nil, err
			}
		}
	case challenge.RetrySameInstance:
		// 扫码：期望值不变，继续等下一次扫描
	}

	if err := m.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, errors.ChallengeFailed
}

// regenerate 换一个新的挑战实例并清零连续失败计数
func (m *Machine) regenerate(sess *model.DismissalSession) error {
	inst, err := challenge.Generate(model.Alarm{
		Mode:         sess.Mode,
		ChallengeRef: challengeRefOf(sess),
	})
	if err != nil {
		return err
	}
	sess.Challenge = inst
	sess.Failures = 0
	return nil
}

func challengeRefOf(sess *model.DismissalSession) string {
	if sess.Challenge != nil && sess.Mode == model.ModeQRCode {
		return sess.Challenge.Expected
	}
	return ""
}

// Drop 闹钟被删除时清理它的会话：撤回还挂着的通知并丢弃会话。
// 没有会话时什么都不做。
func (m *Machine) Drop(ctx context.Context, alarmID string) error {
	sess, err := m.sessions.Get(ctx, alarmID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	if sess.State != model.DismissalDismissed {
		if err := m.notifier.Dismiss(ctx, sess.NotificationHandle); err != nil {
			logger.Logger.Warn("Notification dismiss failed on drop",
				zap.String("alarm_id", alarmID),
				zap.Error(err),
			)
		}
	}
	return m.sessions.Delete(ctx, alarmID)
}

// Snooze 贪睡。minutes 为 0 用默认值，超出 [1, max] 返回 SnoozeInvalid。
// 撤回当前通知、关闭会话，并把闹钟改期到 now+minutes；
// 一次性闹钟触发时被停用过，这里重新激活，让它在贪睡到期时再响。
func (m *Machine) Snooze(ctx context.Context, alarmID string, minutes int) (*model.Alarm, error) {
	if minutes == 0 {
		minutes = config.Cfg.SnoozeDefaultMinutes
	}
	if minutes < 1 || minutes > config.Cfg.SnoozeMaxMinutes {
		return nil, errors.SnoozeInvalid
	}

	sess, err := m.Get(ctx, alarmID)
	if err != nil {
		return nil, err
	}
	if sess.State == model.DismissalDismissed {
		return nil, errors.SessionStateInvalid
	}

	now := m.clk.Now()
	until := utils.MinuteStart(now.Add(time.Duration(minutes) * time.Minute))

	updated, err := m.rescheduleAlarm(ctx, alarmID, until, now)
	if err != nil {
		return nil, err
	}

	if err := m.notifier.Dismiss(ctx, sess.NotificationHandle); err != nil {
		logger.Logger.Warn("Notification dismiss failed on snooze",
			zap.String("alarm_id", alarmID),
			zap.Error(err),
		)
	}
	if err := m.sessions.Delete(ctx, alarmID); err != nil {
		logger.Logger.Warn("Failed to delete session on snooze",
			zap.String("alarm_id", alarmID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Alarm snoozed",
		zap.String("alarm_id", alarmID),
		zap.Int("minutes", minutes),
		zap.Time("snoozed_until", until),
	)
	return updated, nil
}

// rescheduleAlarm 在列表锁内完成贪睡的读改写
func (m *Machine) rescheduleAlarm(ctx context.Context, alarmID string, until, now time.Time) (*model.Alarm, error) {
	release, err := store.Acquire(ctx, m.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	alarms, err := m.alarms.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range alarms {
		if alarms[i].ID != alarmID {
			continue
		}

		alarms[i].SnoozedUntil = &until
		alarms[i].IsActive = true
		alarms[i].UpdatedAt = now

		if err := m.alarms.SaveAll(ctx, alarms); err != nil {
			return nil, err
		}
		out := alarms[i].Clone()
		return &out, nil
	}

	return nil, errors.AlarmNotFound
}
