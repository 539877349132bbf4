package service

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/cache"
	"github.com/deadpanpulley/alarm-nosnooze/internal/clock"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/internal/model/dto"
	"github.com/deadpanpulley/alarm-nosnooze/internal/notify"
	"github.com/deadpanpulley/alarm-nosnooze/internal/schedule"
	"github.com/deadpanpulley/alarm-nosnooze/internal/store"
	pkgerrors "github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/snowflake"
	"github.com/deadpanpulley/alarm-nosnooze/utils"
)

var (
	alarmService *AlarmService
	alarmOnce    sync.Once
)

// Alarms 返回默认装配的闹钟服务（Redis 存储 + MQ 通知）
func Alarms() *AlarmService {
	alarmOnce.Do(func() {
		alarmService = NewAlarmService(
			store.NewRedisStore(),
			cache.EvaluateLocker{},
			schedule.NewArmer(notify.NewMQNotifier()),
			clock.System(),
		)
	})
	return alarmService
}

// AlarmService 闹钟定义的增删改查。所有写路径都在列表锁内完成
// 读改写，和评估器互斥。
type AlarmService struct {
	store  store.AlarmStore
	locker store.Locker
	armer  *schedule.Armer
	clk    clock.Clock

	newID func() (string, error)
}

func NewAlarmService(st store.AlarmStore, locker store.Locker, armer *schedule.Armer, clk clock.Clock) *AlarmService {
	return &AlarmService{
		store:  st,
		locker: locker,
		armer:  armer,
		clk:    clk,
		newID: func() (string, error) {
			id, err := snowflake.NextID()
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(id, 10), nil
		},
	}
}

// List 返回全部闹钟，保持存储顺序
func (s *AlarmService) List(ctx context.Context) ([]dto.AlarmResponse, error) {
	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AlarmResponse, len(alarms))
	for i, a := range alarms {
		out[i] = toAlarmResponse(a)
	}
	return out, nil
}

// Get 按 ID 查询单个闹钟
func (s *AlarmService) Get(ctx context.Context, id string) (*dto.AlarmResponse, error) {
	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range alarms {
		if a.ID == id {
			resp := toAlarmResponse(a)
			return &resp, nil
		}
	}
	return nil, pkgerrors.AlarmNotFound
}

// Create 创建闹钟。时间文本在这里解析一次，之后只存时和分。
// 激活的闹钟立即布防；通知能力不可用时激活意图照常保存、
// 闹钟保持未布防，并把 CapabilityUnavailable 连同已建实体一起返回。
func (s *AlarmService) Create(ctx context.Context, req dto.CreateAlarmRequest) (*dto.AlarmResponse, error) {
	hour, minute, err := utils.ResolveClockTime(req.Time)
	if err != nil {
		return nil, err
	}

	if err := model.ValidateDays(req.Days); err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	alarm := model.Alarm{
		ID:           id,
		Hour:         hour,
		Minute:       minute,
		Label:        req.Label,
		IsActive:     req.IsActive == nil || *req.IsActive,
		Days:         model.NormalizeDays(req.Days),
		Mode:         model.AlarmMode(req.Mode),
		ChallengeRef: req.ChallengeRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := alarm.Validate(); err != nil {
		return nil, err
	}

	var armErr error
	if alarm.IsActive {
		armErr = s.armer.Arm(ctx, &alarm, now)
	}

	release, err := store.Acquire(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	alarms = append(alarms, alarm)
	if err := s.store.SaveAll(ctx, alarms); err != nil {
		return nil, err
	}

	logger.Logger.Info("Alarm created",
		zap.String("alarm_id", alarm.ID),
		zap.String("time", utils.FormatClockTime(hour, minute)),
		zap.Bool("armed", alarm.ArmedHandle != ""),
	)

	resp := toAlarmResponse(alarm)
	return &resp, armErr
}

// Update 部分更新。改了定义的闹钟若处于激活态则重新布防。
func (s *AlarmService) Update(ctx context.Context, id string, req dto.UpdateAlarmRequest) (*dto.AlarmResponse, error) {
	release, err := store.Acquire(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range alarms {
		if alarms[i].ID != id {
			continue
		}
		alarm := &alarms[i]

		if req.Time != nil {
			hour, minute, err := utils.ResolveClockTime(*req.Time)
			if err != nil {
				return nil, err
			}
			alarm.Hour, alarm.Minute = hour, minute
		}
		if req.Label != nil {
			alarm.Label = *req.Label
		}
		if req.Days != nil {
			if err := model.ValidateDays(*req.Days); err != nil {
				return nil, err
			}
			alarm.Days = model.NormalizeDays(*req.Days)
		}
		if req.Mode != nil {
			alarm.Mode = model.AlarmMode(*req.Mode)
		}
		if req.ChallengeRef != nil {
			alarm.ChallengeRef = *req.ChallengeRef
		}

		if err := alarm.Validate(); err != nil {
			return nil, err
		}

		now := s.clk.Now()
		alarm.UpdatedAt = now

		var armErr error
		if alarm.IsActive {
			armErr = s.armer.Arm(ctx, alarm, now)
		} else {
			s.armer.Disarm(ctx, alarm)
		}

		if err := s.store.SaveAll(ctx, alarms); err != nil {
			return nil, err
		}

		resp := toAlarmResponse(*alarm)
		return &resp, armErr
	}

	return nil, pkgerrors.AlarmNotFound
}

// Toggle 布防或撤防。撤防只清调度状态，定义原样保留。
func (s *AlarmService) Toggle(ctx context.Context, id string, active bool) (*dto.AlarmResponse, error) {
	release, err := store.Acquire(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range alarms {
		if alarms[i].ID != id {
			continue
		}
		alarm := &alarms[i]

		now := s.clk.Now()
		alarm.IsActive = active
		alarm.UpdatedAt = now

		var armErr error
		if active {
			armErr = s.armer.Arm(ctx, alarm, now)
		} else {
			s.armer.Disarm(ctx, alarm)
		}

		if err := s.store.SaveAll(ctx, alarms); err != nil {
			return nil, err
		}

		resp := toAlarmResponse(*alarm)
		return &resp, armErr
	}

	return nil, pkgerrors.AlarmNotFound
}

// Delete 删除闹钟，先撤防再从列表里移除
func (s *AlarmService) Delete(ctx context.Context, id string) error {
	release, err := store.Acquire(ctx, s.locker)
	if err != nil {
		return err
	}
	defer release()

	alarms, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range alarms {
		if alarms[i].ID != id {
			continue
		}

		s.armer.Disarm(ctx, &alarms[i])
		alarms = append(alarms[:i], alarms[i+1:]...)

		if err := s.store.SaveAll(ctx, alarms); err != nil {
			return err
		}

		logger.Logger.Info("Alarm deleted", zap.String("alarm_id", id))
		return nil
	}

	return pkgerrors.AlarmNotFound
}

func toAlarmResponse(a model.Alarm) dto.AlarmResponse {
	return dto.AlarmResponse{
		ID:              a.ID,
		Time:            utils.FormatClockTime(a.Hour, a.Minute),
		Hour:            a.Hour,
		Minute:          a.Minute,
		Label:           a.Label,
		IsActive:        a.IsActive,
		Days:            a.Days,
		Mode:            string(a.Mode),
		ChallengeRef:    a.ChallengeRef,
		Armed:           a.ArmedHandle != "",
		NextAt:          a.NextAt,
		LastTriggeredAt: a.LastTriggeredAt,
		SnoozedUntil:    a.SnoozedUntil,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
