package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"post-manager/cmd/web/handlers"
	"post-manager/cmd/web/middleware"
	"post-manager/cmd/web/page"
	"post-manager/cmd/web/views"
	"post-manager/internal/metrics"
	internalmw "post-manager/internal/middleware"
)

// HealthChecker 는 posts API 가 응답하는지 확인한다. (*postsclient.Client 가 구현)
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Deps struct {
	Controller    *page.Controller
	Health        HealthChecker
	ListWait      time.Duration
	SessionCookie string
	SessionTTL    time.Duration
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(internalmw.HandlePanics()))
	r.Use(internalmw.RequestTrace())
	r.Use(metrics.GinMiddleware("web"))
	r.SetHTMLTemplate(views.Templates())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if d.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := d.Health.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "posts_api": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	ctrl := d.Controller
	pages := r.Group("/", middleware.Session(d.SessionCookie, d.SessionTTL))
	{
		pages.GET("/", handlers.IndexHandler(ctrl, d.ListWait))
		pages.POST("/search", handlers.SearchHandler(ctrl))
		pages.POST("/search/clear", handlers.ClearSearchHandler(ctrl))
		pages.POST("/more", handlers.LoadMoreHandler(ctrl))
		pages.POST("/form/create", handlers.OpenCreateHandler(ctrl))
		pages.POST("/form/cancel", handlers.CancelFormHandler(ctrl))
		pages.POST("/toast/dismiss", handlers.DismissToastHandler(ctrl))

		pages.POST("/posts", handlers.SubmitHandler(ctrl))
		pages.POST("/posts/:id", handlers.SubmitHandler(ctrl))
		pages.POST("/posts/:id/edit", handlers.OpenEditHandler(ctrl))
		pages.POST("/posts/:id/delete", handlers.RequestDeleteHandler(ctrl))
		pages.POST("/posts/:id/delete/confirm", handlers.ConfirmDeleteHandler(ctrl))
		pages.POST("/posts/:id/delete/cancel", handlers.CancelDeleteHandler(ctrl))
	}

	return r
}
