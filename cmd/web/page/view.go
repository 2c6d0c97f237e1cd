package page

import (
	"fmt"

	"post-manager/models"
)

type ListStatus string

const (
	ListReady   ListStatus = "ready"
	ListLoading ListStatus = "loading"
	ListFailed  ListStatus = "failed"
)

// FormView 는 생성/수정 폼 렌더링 값이다.
type FormView struct {
	Heading     string
	SubmitLabel string
	Action      string
	Title       string
	Body        string
	CanSubmit   bool
	Saving      bool
	Editing     bool
}

type ItemView struct {
	models.Post
	Deleting         bool
	ConfirmingDelete bool
	// DeleteDisabled 는 이 게시글의 삭제가 진행 중일 때만 true 다. 다른 행에는 영향이 없다.
	DeleteDisabled bool
}

// View 는 한 번의 페이지 렌더링에 필요한 모든 값이다.
// Status 에 따라 로딩/에러/목록 중 하나만 그려진다.
type View struct {
	Form     *FormView
	Search   string
	PageSize int
	Status   ListStatus
	Items    []ItemView
	// Empty 는 목록이 비었을 때, NoMatches 는 검색어가 있는데 비었을 때 true 다.
	Empty        bool
	NoMatches    bool
	ShowLoadMore bool
	Toast        *Toast
}

func (v View) Loading() bool { return v.Status == ListLoading }
func (v View) Failed() bool  { return v.Status == ListFailed }

// BuildView 는 상태와 목록 조회 결과로 View 를 만든다. status 가 ListReady 가 아니면 posts 는 무시된다.
func BuildView(s State, posts []models.Post, status ListStatus) View {
	v := View{
		Form:     buildForm(s),
		Search:   s.Search,
		PageSize: s.PageSize,
		Status:   status,
		Toast:    s.Toast,
	}
	if status != ListReady {
		return v
	}

	v.Items = make([]ItemView, 0, len(posts))
	for _, p := range posts {
		deleting := s.IsDeleting(p.ID)
		v.Items = append(v.Items, ItemView{
			Post:             p,
			Deleting:         deleting,
			ConfirmingDelete: s.ConfirmDeleteID == p.ID && !deleting,
			DeleteDisabled:   deleting,
		})
	}
	v.Empty = len(posts) == 0
	v.NoMatches = v.Empty && s.Search != ""
	v.ShowLoadMore = s.Search == "" && len(posts) > 0 && len(posts) >= s.PageSize
	return v
}

func buildForm(s State) *FormView {
	if s.Form == FormNone {
		return nil
	}
	f := &FormView{
		Title:  s.Draft.Title,
		Body:   s.Draft.Body,
		Saving: s.Saving(),
	}
	switch s.Form {
	case FormEditing:
		f.Heading = "Edit Post"
		f.SubmitLabel = "Update Post"
		f.Editing = true
		if s.Editing != nil {
			f.Action = fmt.Sprintf("/posts/%d", s.Editing.ID)
		}
	default:
		f.Heading = "Create New Post"
		f.SubmitLabel = "Create Post"
		f.Action = "/posts"
	}
	if f.Saving {
		f.SubmitLabel = "Saving..."
	}
	f.CanSubmit = !f.Saving && s.Draft.Valid()
	return f
}
