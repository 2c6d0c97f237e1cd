package eventbus

import (
	"context"
	"encoding/json"
	"errors"
)

// Topic은 토픽의 기본 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// Event는 메시지 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// EventHandler는 이벤트 처리 함수의 시그니처입니다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 인터페이스는 이벤트 발행 및 구독의 추상화를 정의합니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe는 ctx 가 끝날 때까지 토픽을 구독하며 블록됩니다.
	// 핸들러 오류는 로깅 후 다음 메시지로 넘어갑니다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	Close()
}

// ErrClosed는 닫힌 버스에 발행/구독을 시도할 때 반환됩니다.
var ErrClosed = errors.New("eventbus: closed")
