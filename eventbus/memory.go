package eventbus

import (
	"context"
	"sync"

	"post-manager/internal/logger"
)

// MemoryEventBus는 단일 프로세스 안에서 동작하는 EventBus 구현체입니다.
// Kafka 가 꺼져 있을 때와 테스트에서 사용합니다.
// 같은 토픽의 모든 구독자에게 이벤트를 전달합니다. (groupID 는 구분하지 않습니다.)
type MemoryEventBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event
	closed bool
}

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subs: make(map[string][]chan Event)}
}

func (m *MemoryEventBus) Publish(ctx context.Context, topic string, event Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for _, ch := range m.subs[topic] {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *MemoryEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	ch := make(chan Event, 16)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[topic.Base()] = append(m.subs[topic.Base()], ch)
	m.mu.Unlock()

	defer m.unsubscribe(topic.Base(), ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-ch:
			if !ok {
				return ErrClosed
			}
			if err := handler(ctx, evt); err != nil {
				logger.Log.Errorf("이벤트 %s 처리 실패 (group=%s): %v", evt.ID, groupID, err)
			}
		}
	}
}

// Subscribers는 토픽의 현재 구독자 수를 반환합니다.
func (m *MemoryEventBus) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[topic])
}

func (m *MemoryEventBus) unsubscribe(topic string, ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[topic]
	for i, c := range subs {
		if c == ch {
			m.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

func (m *MemoryEventBus) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for topic, subs := range m.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(m.subs, topic)
	}
}
