package studio

import (
	"context"
	"log"
	"sync"
	"time"
)

// Store - 세션 저장소 (메모리 / Redis)
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// Updater - 읽기-수정-저장을 원자적으로 처리하는 저장소 (여러 서버 인스턴스가 공유하는 Redis)
// fn 은 충돌 시 재실행될 수 있으므로 부수효과 없이 session 만 수정해야 함
type Updater interface {
	Update(ctx context.Context, id string, fn func(session *Session) error) (*Session, error)
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore - 프로세스 메모리 세션 저장소. Save 할 때마다 TTL 갱신
type MemoryStore struct {
	ttl      time.Duration
	sessions map[string]*memoryEntry
	mutex    sync.RWMutex
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.sessions[id]
	if !exists || m.now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessions[session.ID] = &memoryEntry{
		session:   session.Clone(),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len - 만료되지 않은 세션 수
func (m *MemoryStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	now := m.now()
	count := 0
	for _, entry := range m.sessions {
		if !now.After(entry.expiresAt) {
			count++
		}
	}
	return count
}

// cleanupExpiredSessions - 만료된 세션 삭제, 삭제된 ID 반환
func (m *MemoryStore) cleanupExpiredSessions() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	var expired []string
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}

	if len(expired) > 0 {
		log.Printf("🧼 [Studio] Cleaned up %d expired sessions (Active: %d)", len(expired), len(m.sessions))
	}
	return expired
}

// StartCleanupRoutine - interval 마다 만료 세션 정리. onExpire 는 삭제된 세션마다 호출
func (m *MemoryStore) StartCleanupRoutine(ctx context.Context, interval time.Duration, onExpire func(id string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, id := range m.cleanupExpiredSessions() {
					if onExpire != nil {
						onExpire(id)
					}
				}
			}
		}
	}()

	log.Printf("🔄 [Studio] Started session cleanup routine (every %v, TTL %v)", interval, m.ttl)
}
