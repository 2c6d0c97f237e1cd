package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKey = "session_id"

// Session 은 세션 쿠키를 읽고, 없거나 형식이 잘못되었으면 새 세션 ID 를 발급한다.
func Session(cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
		}
		// 매 요청마다 만료 시각을 갱신한다.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sid, int(ttl.Seconds()), "/", "", false, true)
		c.Set(sessionKey, sid)
		c.Next()
	}
}

// SessionID 는 Session 미들웨어가 저장한 세션 ID 를 반환한다.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
