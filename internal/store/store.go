package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
	"github.com/deadpanpulley/alarm-nosnooze/pkg/logger"
)

// AlarmStore 闹钟列表的持久化适配层。契约是整存整取：
// GetAll 返回有序列表（key 不存在视为空列表，不是错误），
// SaveAll 整体替换，写失败时旧状态保持完整。
type AlarmStore interface {
	GetAll(ctx context.Context) ([]model.Alarm, error)
	SaveAll(ctx context.Context, alarms []model.Alarm) error
}

// Locker 串行化「读列表 → 改 → 写回」临界区。
// 整存整取的布局下，并发的 read-modify-write 会丢写，
// 评估器和所有修改闹钟列表的操作都必须先拿到锁。
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Acquire 带短暂重试地拿列表锁，返回释放函数。
// 一轮评估扫描通常毫秒级完成，重试预算用完还拿不到就放弃。
func Acquire(ctx context.Context, l Locker) (func(), error) {
	for attempt := 0; attempt < 10; attempt++ {
		held, err := l.TryLock(ctx)
		if err != nil {
			return nil, errors.StorageFailure
		}
		if held {
			return func() {
				if err := l.Unlock(ctx); err != nil {
					logger.Logger.Warn("Failed to release list lock", zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil, errors.EvaluateBusy
}
