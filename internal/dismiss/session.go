package dismiss

import (
	"context"
	"sync"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

// SessionStore 响铃会话的存取。会话按闹钟 ID 索引，
// 一个闹钟同时最多一个会话。不存在时返回 (nil, nil)。
type SessionStore interface {
	Get(ctx context.Context, alarmID string) (*model.DismissalSession, error)
	Save(ctx context.Context, session *model.DismissalSession) error
	Delete(ctx context.Context, alarmID string) error
}

// MemorySessionStore 进程内实现，测试用
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.DismissalSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]model.DismissalSession)}
}

func (s *MemorySessionStore) Get(ctx context.Context, alarmID string) (*model.DismissalSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[alarmID]
	if !ok {
		return nil, nil
	}
	out := sess
	if sess.Challenge != nil {
		c := *sess.Challenge
		out.Challenge = &c
	}
	return &out, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session *model.DismissalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := *session
	if session.Challenge != nil {
		c := *session.Challenge
		sess.Challenge = &c
	}
	s.sessions[session.AlarmID] = sess
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, alarmID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, alarmID)
	return nil
}
