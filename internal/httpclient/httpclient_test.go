package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-manager/internal/trace"
)

func TestNewRequestJoinsPathAndQuery(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
		relPath string
		query   url.Values
		want    string
	}{
		{
			name:    "trailing slash base",
			baseURL: "https://jsonplaceholder.typicode.com/",
			relPath: "/posts",
			query:   url.Values{"_limit": {"10"}},
			want:    "https://jsonplaceholder.typicode.com/posts?_limit=10",
		},
		{
			name:    "base with prefix",
			baseURL: "http://localhost:8001/api",
			relPath: "posts/3",
			want:    "http://localhost:8001/api/posts/3",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c := &BaseClient{BaseURL: testCase.baseURL}
			req, err := c.NewRequest(context.Background(), http.MethodGet, testCase.relPath, testCase.query, nil)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, req.URL.String())
		})
	}
}

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	c := &BaseClient{BaseURL: "http://localhost"}
	_, err := c.NewRequest(context.Background(), http.MethodGet, "/posts?_limit=1", nil, nil)
	assert.Error(t, err)
}

func TestClientPropagatesTraceHeadersAndBody(t *testing.T) {
	var gotRequestID, gotSpanID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		gotSpanID = r.Header.Get("X-Span-Id")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewBaseClient(srv.URL, Config{})
	ctx := trace.WithRequestAndSpan(context.Background(), "req-42", 0)
	req, err := c.NewRequest(ctx, http.MethodPost, "/posts", nil, strings.NewReader(`{"title":"a"}`))
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "1", gotSpanID)
	assert.Equal(t, `{"title":"a"}`, gotBody)
}

func TestNewHTTPError(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	_, _ = rec.WriteString("upstream down")

	err := error(NewHTTPError("posts-api List", rec.Result()))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "status=502")
	assert.Contains(t, err.Error(), "upstream down")
	assert.False(t, IsSuccess(httpErr.StatusCode))
	assert.True(t, IsSuccess(http.StatusCreated))
}

func TestSnippetKeepsRuneBoundary(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want int
	}{
		{name: "short body", body: "짧은 본문", want: len("짧은 본문")},
		{name: "ascii over limit", body: strings.Repeat("a", 2000), want: maxBodyLog},
		{name: "three byte runes", body: strings.Repeat("한", 400), want: 1023},
		{name: "two byte runes", body: "x" + strings.Repeat("é", 600), want: 1023},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := snippet([]byte(tc.body))
			assert.True(t, utf8.ValidString(got))
			assert.Len(t, got, tc.want)
			assert.True(t, strings.HasPrefix(tc.body, got))
		})
	}
}
