package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	PostCreated EventType = "post.created"
	PostUpdated EventType = "post.updated"
	PostDeleted EventType = "post.deleted"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // 발행한 web 인스턴스 ID
	Version   string    `json:"version"`
}

// PostChangedEvent 게시글 변경(생성/수정/삭제) 이벤트
// 수신 측은 목록 캐시를 무효화한다.
type PostChangedEvent struct {
	BaseEvent
	PostID int `json:"post_id"`
}

// NewPostChanged 는 source 인스턴스에서 발생한 변경 이벤트를 만든다.
func NewPostChanged(t EventType, source string, postID int) PostChangedEvent {
	return PostChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      t,
			Timestamp: time.Now().UTC(),
			Source:    source,
			Version:   "1.0",
		},
		PostID: postID,
	}
}
