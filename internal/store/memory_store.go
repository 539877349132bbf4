package store

import (
	"context"
	"sync"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// MemoryStore 进程内实现，开发和测试用。语义与 RedisStore 对齐：
// 整存整取、保序、读写都返回拷贝。
type MemoryStore struct {
	mu     sync.Mutex
	alarms []model.Alarm

	// FailReads / FailWrites 注入存储故障，测试错误路径
	FailReads  error
	FailWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]model.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	out := make([]model.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		out[i] = a.Clone()
	}
	return out, nil
}

func (s *MemoryStore) SaveAll(ctx context.Context, alarms []model.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	next := make([]model.Alarm, len(alarms))
	for i, a := range alarms {
		next[i] = a.Clone()
	}
	s.alarms = next
	return nil
}

// MutexLocker 进程内锁，单进程部署和测试用
type MutexLocker struct {
	mu     sync.Mutex
	locked bool
}

func (l *MutexLocker) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return false, nil
	}
	l.locked = true
	return true, nil
}

func (l *MutexLocker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.locked = false
	return nil
}
