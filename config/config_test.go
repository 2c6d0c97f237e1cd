package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("WEB_ADDR", "")
	t.Setenv("REDIS_ADDR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), CONFIG_FILE))
	require.NoError(t, err)

	assert.Equal(t, Default().Web, cfg.Web)
	assert.Equal(t, 10, cfg.Web.PageSize)
	assert.Equal(t, 1, cfg.Web.DefaultUserID)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), CONFIG_FILE)
	data := []byte(`
web:
  page_size: 20
  list_wait: 500ms
api:
  base_url: "http://localhost:8001/"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Web.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Web.ListWait)
	assert.Equal(t, "http://localhost:8001/", cfg.API.BaseURL)
	// 지정하지 않은 값은 기본값 유지
	assert.Equal(t, 10, cfg.Web.PageStep)
	assert.Equal(t, "pm_session", cfg.Web.Session.CookieName)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSTS_API_BASE_URL", "http://mockapi:8001/")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), CONFIG_FILE))
	require.NoError(t, err)

	assert.Equal(t, "http://mockapi:8001/", cfg.API.BaseURL)
	assert.Equal(t, "redis:6379", cfg.Web.Session.Redis.Addr)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte("web: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
