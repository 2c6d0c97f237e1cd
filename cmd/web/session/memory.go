package session

import (
	"context"
	"sync"
	"time"

	"post-manager/cmd/web/page"
)

type memoryEntry struct {
	state   page.State
	expires time.Time
}

// MemoryStore 는 프로세스 메모리에 세션 상태를 보관한다. (단일 인스턴스용)
// 마지막 갱신 후 ttl 이 지난 세션은 제로 상태로 취급한다.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Load(_ context.Context, sid string) (page.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(sid).Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, sid string, fn func(*page.State) error) (page.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.get(sid).Clone()
	if err := fn(&s); err != nil {
		return page.State{}, err
	}
	e := memoryEntry{state: s}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[sid] = e
	return s.Clone(), nil
}

// get 은 m.mu 를 잡은 상태에서 호출해야 한다.
func (m *MemoryStore) get(sid string) page.State {
	e, ok := m.entries[sid]
	if !ok {
		return page.State{}
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, sid)
		return page.State{}
	}
	return e.state
}

// Sweep 은 만료된 세션을 정리하고 정리한 개수를 반환한다.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for sid, e := range m.entries {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(m.entries, sid)
			n++
		}
	}
	return n
}

// RunSweeper 는 ctx 가 끝날 때까지 주기적으로 Sweep 을 호출한다.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
