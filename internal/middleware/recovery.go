package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"post-manager/internal/logger"
	"post-manager/internal/trace"
)

// HandlePanics 는 gin.CustomRecovery 에 넘길 복구 함수다.
// 패닉 내용은 로그로만 남기고 클라이언트에는 500 만 반환한다.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.ErrorWithFields("panic recovered", logger.Fields{
			"path":       c.Request.URL.Path,
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"panic":      fmt.Sprint(recovered),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
