package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session("pm_session", time.Hour))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, SessionID(c)) })

	existing := uuid.NewString()
	testCases := []struct {
		name   string
		cookie string
		reuse  bool
	}{
		{name: "no cookie", cookie: "", reuse: false},
		{name: "valid cookie", cookie: existing, reuse: true},
		{name: "garbage cookie", cookie: "not-a-uuid", reuse: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "pm_session", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			sid := w.Body.String()
			require.NoError(t, uuid.Validate(sid))
			if tc.reuse {
				assert.Equal(t, tc.cookie, sid)
			} else {
				assert.NotEqual(t, tc.cookie, sid)
			}

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, sid, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
		})
	}
}
