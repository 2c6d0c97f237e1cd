package page

import (
	"context"
	"maps"
	"time"

	"post-manager/models"
)

type FormMode string

const (
	FormNone     FormMode = ""
	FormCreating FormMode = "creating"
	FormEditing  FormMode = "editing"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

// State 는 브라우저 세션 하나의 페이지 상태다. 세션 저장소에 JSON 으로 보관된다.
// 제로 값은 "아무 것도 열려 있지 않은 첫 화면"이며 PageSize 는 Controller 가 채운다.
type State struct {
	Form    FormMode     `json:"form,omitempty"`
	Editing *models.Post `json:"editing,omitempty"`
	Draft   PostForm     `json:"draft"`

	// SavingSince 가 0 이 아니면 create/update 호출이 진행 중이다.
	SavingSince time.Time `json:"saving_since,omitzero"`

	Search   string `json:"search,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Toast    *Toast `json:"toast,omitempty"`

	// ConfirmDeleteID 는 삭제 확인을 기다리는 게시글 ID 다. (0 이면 없음)
	ConfirmDeleteID int `json:"confirm_delete_id,omitempty"`
	// Deleting 은 삭제 호출이 진행 중인 게시글 ID 와 시작 시각이다.
	Deleting map[int]time.Time `json:"deleting,omitempty"`
}

func (s State) Saving() bool {
	return !s.SavingSince.IsZero()
}

// Clone 은 포인터와 맵을 공유하지 않는 복사본을 반환한다.
func (s State) Clone() State {
	if s.Editing != nil {
		p := *s.Editing
		s.Editing = &p
	}
	if s.Toast != nil {
		t := *s.Toast
		s.Toast = &t
	}
	if s.Deleting != nil {
		s.Deleting = maps.Clone(s.Deleting)
	}
	return s
}

func (s State) IsDeleting(id int) bool {
	_, ok := s.Deleting[id]
	return ok
}

// StateStore 는 세션 ID 별 State 를 보관한다.
// Update 는 세션 단위로 원자적이어야 한다. fn 이 에러를 반환하면 저장하지 않는다.
// 없는 세션은 제로 State 로 취급한다.
type StateStore interface {
	Load(ctx context.Context, sid string) (State, error)
	Update(ctx context.Context, sid string, fn func(*State) error) (State, error)
}
