package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// GameSession 用户在某个关卡上的进行状态
type GameSession struct {
	UserID      string    `json:"userId"`
	LevelID     string    `json:"levelId"`
	CurrentTask int       `json:"currentTask"`
	Code        string    `json:"code"`
	Output      string    `json:"output"`
	Passed      []bool    `json:"passed"`
	StartedAt   time.Time `json:"startedAt"`
}

func (s *GameSession) CurrentPassed() bool {
	return s.CurrentTask < len(s.Passed) && s.Passed[s.CurrentTask]
}

// AllPassed 没有任务的会话视为未完成
func (s *GameSession) AllPassed() bool {
	if len(s.Passed) == 0 {
		return false
	}
	for _, p := range s.Passed {
		if !p {
			return false
		}
	}
	return true
}

// fits 会话是否仍与关卡的任务数一致
func (s *GameSession) fits(level *model.Level) bool {
	return len(s.Passed) == len(level.Tasks) && s.CurrentTask >= 0 && s.CurrentTask < len(level.Tasks)
}

type SessionStore interface {
	Get(ctx context.Context, userID, levelID string) (*GameSession, error)
	Save(ctx context.Context, session *GameSession, ttl time.Duration) error
	Delete(ctx context.Context, userID, levelID string) error
}

func sessionKey(userID, levelID string) string {
	return fmt.Sprintf("code4u:game:%s:%s", userID, levelID)
}

// RedisSessionStore 会话以 JSON 存入 Redis 并设置过期时间
type RedisSessionStore struct {
	Client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Client: client}
}

func (r *RedisSessionStore) Get(ctx context.Context, userID, levelID string) (*GameSession, error) {
	data, err := r.Client.Get(ctx, sessionKey(userID, levelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session GameSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session *GameSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, sessionKey(session.UserID, session.LevelID), data, ttl).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID, levelID string) error {
	return r.Client.Del(ctx, sessionKey(userID, levelID)).Err()
}

// MemorySessionStore Redis 不可用时的进程内实现
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	session   GameSession
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (m *MemorySessionStore) Get(_ context.Context, userID, levelID string) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(userID, levelID)
	entry, ok := m.sessions[key]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.sessions, key)
		return nil, util.ErrSessionNotFound
	}
	session := entry.session
	session.Passed = append([]bool(nil), entry.session.Passed...)
	return &session, nil
}

func (m *MemorySessionStore) Save(_ context.Context, session *GameSession, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memorySession{session: *session}
	entry.session.Passed = append([]bool(nil), session.Passed...)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.sessions[sessionKey(session.UserID, session.LevelID)] = entry
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID, levelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey(userID, levelID))
	return nil
}
