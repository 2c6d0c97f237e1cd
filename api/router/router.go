package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"post-manager/api/handlers"
	_ "post-manager/docs"
	"post-manager/internal/metrics"
	"post-manager/internal/middleware"
	"post-manager/services"
)

// PingFunc 은 저장소 연결 상태를 확인한다. nil 이면 항상 정상이다.
type PingFunc func(ctx context.Context) error

func New(svc *services.PostService, ping PingFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))
	r.Use(middleware.RequestTrace())
	r.Use(metrics.GinMiddleware("mockapi"))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storage": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/posts", handlers.ListPostsHandler(svc))
	r.GET("/posts/:id", handlers.GetPostHandler(svc))
	r.POST("/posts", handlers.CreatePostHandler(svc))
	r.PUT("/posts/:id", handlers.UpdatePostHandler(svc))
	r.DELETE("/posts/:id", handlers.DeletePostHandler(svc))

	return r
}

// WithCORS 는 모든 origin 에서의 브라우저 호출을 허용한다.
func WithCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID, middleware.HeaderSpanID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
	}).Handler(h)
}
