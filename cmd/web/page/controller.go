package page

import (
	"context"
	"errors"
	"time"

	"post-manager/cmd/web/clients/postsclient"
	"post-manager/internal/logger"
	"post-manager/models"
)

// 토스트 메시지
const (
	MsgCreated      = "Post created successfully!"
	MsgCreateFailed = "Failed to create post. Please try again."
	MsgUpdated      = "Post updated successfully!"
	MsgUpdateFailed = "Failed to update post. Please try again."
	MsgDeleted      = "Post deleted successfully!"
	MsgDeleteFailed = "Failed to delete post. Please try again."
	MsgPostGone     = "That post is no longer in the list."
	MsgStaleForm    = "This form is out of date. Please reopen it and try again."
)

var (
	// ErrNoForm 은 열린 폼 없이 제출했을 때 반환된다.
	ErrNoForm = errors.New("no form is open")
	// ErrBusy 는 같은 작업이 이미 진행 중일 때 반환된다.
	ErrBusy = errors.New("operation already in flight")
	// ErrNotConfirmed 는 확인 대기 중이 아닌 게시글의 삭제 확정 요청에 반환된다.
	ErrNotConfirmed = errors.New("delete was not requested for this post")
	// ErrStaleForm 은 제출 경로가 현재 열린 폼(생성/수정 대상)과 다를 때 반환된다.
	ErrStaleForm = errors.New("submitted form does not match the open form")
)

// PostsAPI 는 Controller 가 사용하는 posts 리소스 연산이다. (*postsapi.Store 가 구현)
type PostsAPI interface {
	List(ctx context.Context, params postsclient.ListParams) ([]models.Post, error)
	Create(ctx context.Context, in models.CreatePostRequest) (models.Post, error)
	Update(ctx context.Context, in models.UpdatePostRequest) (models.Post, error)
	Delete(ctx context.Context, id int) error
}

type Config struct {
	PageSize      int
	PageStep      int
	DefaultUserID int
	// BusyTimeout 이 지난 진행 중 표시(저장/삭제)는 끝난 것으로 본다.
	// 프로세스가 호출 도중 종료되어 세션에 표시가 남는 경우를 정리한다.
	BusyTimeout time.Duration
	Now         func() time.Time
}

// Controller 는 페이지 상태 전이를 담당하고 posts 호출을 조율한다.
//
// 상태 변경은 모두 StateStore.Update 안에서 일어난다. 원격 호출은 Update 밖에서 수행하고,
// 호출 전후로 진행 중 표시를 기록/해제해서 같은 세션의 다른 렌더링이 이를 볼 수 있게 한다.
type Controller struct {
	api    PostsAPI
	states StateStore
	cfg    Config
}

func NewController(api PostsAPI, states StateStore, cfg Config) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.PageStep <= 0 {
		cfg.PageStep = 10
	}
	if cfg.DefaultUserID == 0 {
		cfg.DefaultUserID = 1
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{api: api, states: states, cfg: cfg}
}

// update 는 정규화 후 fn 을 적용한다.
func (c *Controller) update(ctx context.Context, sid string, fn func(*State) error) (State, error) {
	return c.states.Update(ctx, sid, func(s *State) error {
		c.normalize(s)
		return fn(s)
	})
}

func (c *Controller) normalize(s *State) {
	if s.PageSize <= 0 {
		s.PageSize = c.cfg.PageSize
	}
	now := c.cfg.Now()
	if s.Saving() && now.Sub(s.SavingSince) > c.cfg.BusyTimeout {
		s.SavingSince = time.Time{}
	}
	for id, since := range s.Deleting {
		if now.Sub(since) > c.cfg.BusyTimeout {
			delete(s.Deleting, id)
		}
	}
}

// State 는 정규화된 현재 상태를 반환한다. (저장하지 않는다.)
func (c *Controller) State(ctx context.Context, sid string) (State, error) {
	s, err := c.states.Load(ctx, sid)
	if err != nil {
		return State{}, err
	}
	c.normalize(&s)
	return s, nil
}

func (c *Controller) OpenCreate(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.Form = FormCreating
		s.Editing = nil
		s.Draft = PostForm{}
		return nil
	})
	return err
}

// OpenEdit 은 현재 목록에서 id 에 해당하는 게시글로 수정 폼을 연다.
// 목록에 없으면 에러 토스트를 남긴다.
func (c *Controller) OpenEdit(ctx context.Context, sid string, id int) error {
	s, err := c.State(ctx, sid)
	if err != nil {
		return err
	}
	posts, listErr := c.api.List(ctx, listParams(s))

	_, err = c.update(ctx, sid, func(s *State) error {
		if listErr == nil {
			for _, p := range posts {
				if p.ID == id {
					post := p
					s.Form = FormEditing
					s.Editing = &post
					s.Draft = PostForm{Title: p.Title, Body: p.Body}
					return nil
				}
			}
		}
		s.Toast = &Toast{Kind: ToastError, Message: MsgPostGone}
		return nil
	})
	return err
}

// CancelForm 은 폼을 닫고 입력값을 버린다.
func (c *Controller) CancelForm(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.Form = FormNone
		s.Editing = nil
		s.Draft = PostForm{}
		return nil
	})
	return err
}

// Submit 은 열린 폼(생성 또는 수정)을 제출한다.
// postID 가 0 이면 생성 폼, 0 보다 크면 그 게시글의 수정 폼이 열려 있어야 한다.
// 열린 폼과 맞지 않으면 API 를 호출하지 않고 에러 토스트를 남긴 뒤 ErrStaleForm 을 반환한다.
// 입력이 유효하지 않으면 입력값만 보존하고 ErrInvalidForm 을 반환한다. (API 호출 없음)
// API 실패는 에러 토스트로 기록되며 nil 을 반환한다.
func (c *Controller) Submit(ctx context.Context, sid string, postID int, form PostForm) error {
	var (
		mode    FormMode
		editing models.Post
		outcome error
	)
	_, err := c.update(ctx, sid, func(s *State) error {
		if s.Form == FormNone {
			return ErrNoForm
		}
		if !formMatches(*s, postID) {
			s.Toast = &Toast{Kind: ToastError, Message: MsgStaleForm}
			outcome = ErrStaleForm
			return nil
		}
		if s.Saving() {
			return ErrBusy
		}
		if err := form.Validate(); err != nil {
			s.Draft = form
			outcome = err
			return nil
		}
		mode = s.Form
		if s.Editing != nil {
			editing = *s.Editing
		}
		s.Draft = form.Trimmed()
		s.SavingSince = c.cfg.Now()
		return nil
	})
	if err != nil {
		return err
	}
	if outcome != nil {
		return outcome
	}

	in := form.Trimmed()
	var (
		apiErr  error
		success string
		failure string
	)
	switch mode {
	case FormCreating:
		_, apiErr = c.api.Create(ctx, models.CreatePostRequest{
			Title:  in.Title,
			Body:   in.Body,
			UserID: c.cfg.DefaultUserID,
		})
		success, failure = MsgCreated, MsgCreateFailed
	case FormEditing:
		_, apiErr = c.api.Update(ctx, models.UpdatePostRequest{
			ID:     editing.ID,
			Title:  in.Title,
			Body:   in.Body,
			UserID: editing.UserID,
		})
		success, failure = MsgUpdated, MsgUpdateFailed
	}
	if apiErr != nil {
		logger.ErrorWithFields("post save failed", logger.Fields{
			"mode":    string(mode),
			"post_id": editing.ID,
			"error":   apiErr.Error(),
		})
	}

	_, err = c.update(ctx, sid, func(s *State) error {
		s.SavingSince = time.Time{}
		if apiErr != nil {
			s.Toast = &Toast{Kind: ToastError, Message: failure}
			return nil
		}
		s.Form = FormNone
		s.Editing = nil
		s.Draft = PostForm{}
		s.Toast = &Toast{Kind: ToastSuccess, Message: success}
		return nil
	})
	return err
}

// RequestDelete 는 id 에 대한 삭제 확인을 요청한다.
func (c *Controller) RequestDelete(ctx context.Context, sid string, id int) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.ConfirmDeleteID = id
		return nil
	})
	return err
}

// CancelDelete 는 id 에 대한 삭제 확인을 취소한다. 다른 게시글의 확인 대기나 다른 상태는 바뀌지 않는다.
func (c *Controller) CancelDelete(ctx context.Context, sid string, id int) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		if s.ConfirmDeleteID == id {
			s.ConfirmDeleteID = 0
		}
		return nil
	})
	return err
}

// ConfirmDelete 는 확인된 삭제를 수행한다.
// 호출이 끝날 때까지 해당 게시글만 진행 중으로 표시된다.
func (c *Controller) ConfirmDelete(ctx context.Context, sid string, id int) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		if s.IsDeleting(id) {
			return ErrBusy
		}
		if s.ConfirmDeleteID != id {
			return ErrNotConfirmed
		}
		s.ConfirmDeleteID = 0
		if s.Deleting == nil {
			s.Deleting = make(map[int]time.Time)
		}
		s.Deleting[id] = c.cfg.Now()
		return nil
	})
	if err != nil {
		return err
	}

	apiErr := c.api.Delete(ctx, id)
	if apiErr != nil {
		logger.ErrorWithFields("post delete failed", logger.Fields{
			"post_id": id,
			"error":   apiErr.Error(),
		})
	}

	_, err = c.update(ctx, sid, func(s *State) error {
		delete(s.Deleting, id)
		if apiErr != nil {
			s.Toast = &Toast{Kind: ToastError, Message: MsgDeleteFailed}
		} else {
			s.Toast = &Toast{Kind: ToastSuccess, Message: MsgDeleted}
		}
		return nil
	})
	return err
}

func (c *Controller) SetSearch(ctx context.Context, sid, text string) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.Search = text
		return nil
	})
	return err
}

func (c *Controller) ClearSearch(ctx context.Context, sid string) error {
	return c.SetSearch(ctx, sid, "")
}

// LoadMore 는 페이지 크기를 PageStep 만큼 늘린다.
func (c *Controller) LoadMore(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.PageSize += c.cfg.PageStep
		return nil
	})
	return err
}

func (c *Controller) DismissToast(ctx context.Context, sid string) error {
	_, err := c.update(ctx, sid, func(s *State) error {
		s.Toast = nil
		return nil
	})
	return err
}

// Render 는 현재 상태로 목록을 조회해 View 를 만든다.
// wait 가 0 보다 크면 그 시간까지만 목록을 기다리고, 넘으면 로딩 상태를 반환한다.
// (조회 자체는 계속되어 다음 렌더링에서 캐시로 사용된다.)
func (c *Controller) Render(ctx context.Context, sid string, wait time.Duration) (View, error) {
	s, err := c.State(ctx, sid)
	if err != nil {
		return View{}, err
	}

	listCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	posts, err := c.api.List(listCtx, listParams(s))
	status := ListReady
	if err != nil {
		if ctx.Err() == nil && errors.Is(listCtx.Err(), context.DeadlineExceeded) {
			status = ListLoading
		} else {
			status = ListFailed
			logger.ErrorWithFields("post list failed", logger.Fields{
				"limit":  s.PageSize,
				"search": s.Search,
				"error":  err.Error(),
			})
		}
	}
	return BuildView(s, posts, status), nil
}

// formMatches 는 postID 가 열린 폼의 대상인지 확인한다. (0 은 생성 폼)
func formMatches(s State, postID int) bool {
	if postID == 0 {
		return s.Form == FormCreating
	}
	return s.Form == FormEditing && s.Editing != nil && s.Editing.ID == postID
}

func listParams(s State) postsclient.ListParams {
	return postsclient.ListParams{Limit: s.PageSize, Search: s.Search}
}
