package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"post-manager/cmd/web/middleware"
	"post-manager/cmd/web/page"
	"post-manager/cmd/web/views"
	"post-manager/internal/logger"
	"post-manager/internal/trace"
)

// IndexHandler 는 현재 세션 상태로 페이지를 그린다.
// 목록 조회는 listWait 까지만 기다리고, 넘으면 로딩 화면을 그린다. (?wait=full 이면 끝까지 기다린다.)
func IndexHandler(ctrl *page.Controller, listWait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		wait := listWait
		if c.Query("wait") == "full" {
			wait = 0
		}
		renderPage(c, ctrl, http.StatusOK, wait)
	}
}

// SearchHandler 는 검색어를 바꾼다. 공백만 있는 검색어도 그대로 보존한다.
func SearchHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.SetSearch(c.Request.Context(), middleware.SessionID(c), c.PostForm("search")))
	}
}

func ClearSearchHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.ClearSearch(c.Request.Context(), middleware.SessionID(c)))
	}
}

func LoadMoreHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.LoadMore(c.Request.Context(), middleware.SessionID(c)))
	}
}

func OpenCreateHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.OpenCreate(c.Request.Context(), middleware.SessionID(c)))
	}
}

func CancelFormHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.CancelForm(c.Request.Context(), middleware.SessionID(c)))
	}
}

// SubmitHandler 는 생성(POST /posts)과 수정(POST /posts/:id) 폼 제출을 처리한다.
// 경로가 열린 폼과 맞지 않으면 (다른 탭에서 다른 폼을 연 경우 등) API 를 호출하지 않는다.
// 입력이 유효하지 않으면 API 를 호출하지 않고 422 로 폼을 다시 그린다.
func SubmitHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := 0
		if c.Param("id") != "" {
			var ok bool
			if id, ok = postID(c); !ok {
				return
			}
		}
		form := page.PostForm{Title: c.PostForm("title"), Body: c.PostForm("body")}
		err := ctrl.Submit(c.Request.Context(), middleware.SessionID(c), id, form)
		if errors.Is(err, page.ErrInvalidForm) {
			renderPage(c, ctrl, http.StatusUnprocessableEntity, 0)
			return
		}
		run(c, err)
	}
}

func OpenEditHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postID(c)
		if !ok {
			return
		}
		run(c, ctrl.OpenEdit(c.Request.Context(), middleware.SessionID(c), id))
	}
}

func RequestDeleteHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postID(c)
		if !ok {
			return
		}
		run(c, ctrl.RequestDelete(c.Request.Context(), middleware.SessionID(c), id))
	}
}

func ConfirmDeleteHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postID(c)
		if !ok {
			return
		}
		run(c, ctrl.ConfirmDelete(c.Request.Context(), middleware.SessionID(c), id))
	}
}

func CancelDeleteHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postID(c)
		if !ok {
			return
		}
		run(c, ctrl.CancelDelete(c.Request.Context(), middleware.SessionID(c), id))
	}
}

func DismissToastHandler(ctrl *page.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		run(c, ctrl.DismissToast(c.Request.Context(), middleware.SessionID(c)))
	}
}

func renderPage(c *gin.Context, ctrl *page.Controller, status int, wait time.Duration) {
	v, err := ctrl.Render(c.Request.Context(), middleware.SessionID(c), wait)
	if err != nil {
		fail(c, err)
		return
	}
	c.HTML(status, views.PageTemplate, v)
}

// run 은 상태 전이 결과에 따라 목록 화면으로 303 리다이렉트한다.
// 무시해도 되는 전이 거부(중복 제출 등)도 같은 화면으로 돌아간다.
func run(c *gin.Context, err error) {
	switch {
	case err == nil,
		errors.Is(err, page.ErrBusy),
		errors.Is(err, page.ErrNoForm),
		errors.Is(err, page.ErrNotConfirmed),
		errors.Is(err, page.ErrStaleForm):
		c.Redirect(http.StatusSeeOther, "/")
	default:
		fail(c, err)
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.ErrorWithFields("page handler failed", logger.Fields{
		"path":       c.Request.URL.Path,
		"request_id": trace.RequestIDFromContext(c.Request.Context()),
		"error":      err.Error(),
	})
	c.String(http.StatusInternalServerError, "internal error")
}

func postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}
