package postsclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-manager/internal/httpclient"
	"post-manager/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   string
}

func newTestServer(t *testing.T, status int, response any) (*Client, func() []recordedRequest) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(b)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)
	requests := func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), got...)
	}
	return New(srv.URL+"/", time.Second), requests
}

func TestListQueryParams(t *testing.T) {
	testCases := []struct {
		name      string
		params    ListParams
		wantQuery map[string][]string
	}{
		{
			name:      "default limit without search",
			params:    ListParams{},
			wantQuery: map[string][]string{"_limit": {"10"}},
		},
		{
			name:      "limit and search",
			params:    ListParams{Limit: 20, Search: "qui est"},
			wantQuery: map[string][]string{"_limit": {"20"}, "title_like": {"qui est"}},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			client, got := newTestServer(t, http.StatusOK, []models.Post{{ID: 1, Title: "a", Body: "b", UserID: 1}})

			posts, err := client.List(context.Background(), testCase.params)
			require.NoError(t, err)
			require.Len(t, posts, 1)
			require.Len(t, got(), 1)

			req := got()[0]
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/posts", req.Path)
			assert.Equal(t, testCase.wantQuery, req.Query)
		})
	}
}

func TestListEmptyBodyReturnsEmptySlice(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, []models.Post{})

	posts, err := client.List(context.Background(), ListParams{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestCreateSendsJSONBody(t *testing.T) {
	client, got := newTestServer(t, http.StatusCreated, models.Post{ID: 101, Title: "t", Body: "b", UserID: 1})

	post, err := client.Create(context.Background(), models.CreatePostRequest{Title: "t", Body: "b", UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 101, post.ID)

	req := got()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/posts", req.Path)
	assert.JSONEq(t, `{"title":"t","body":"b","userId":1}`, req.Body)
}

func TestUpdateUsesPathID(t *testing.T) {
	client, got := newTestServer(t, http.StatusOK, models.Post{ID: 5, Title: "new", Body: "b", UserID: 3})

	post, err := client.Update(context.Background(), models.UpdatePostRequest{ID: 5, Title: "new", Body: "b", UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, post.ID)

	req := got()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/posts/5", req.Path)
	assert.JSONEq(t, `{"title":"new","body":"b","userId":3}`, req.Body)
}

func TestDelete(t *testing.T) {
	client, got := newTestServer(t, http.StatusOK, map[string]any{})

	require.NoError(t, client.Delete(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, got()[0].Method)
	assert.Equal(t, "/posts/9", got()[0].Path)
}

func TestErrorsCarryStatus(t *testing.T) {
	client, _ := newTestServer(t, http.StatusInternalServerError, map[string]string{"error": "boom"})

	_, err := client.List(context.Background(), ListParams{})
	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	err = client.Delete(context.Background(), 1)
	require.True(t, errors.As(err, &httpErr))
}

func TestNotFound(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound, map[string]string{"error": "post not found"})

	_, err := client.Update(context.Background(), models.UpdatePostRequest{ID: 404, Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, client.Delete(context.Background(), 404), ErrNotFound)
}

func TestTransportFailure(t *testing.T) {
	client := New("http://127.0.0.1:1/", 200*time.Millisecond)

	_, err := client.List(context.Background(), ListParams{})
	assert.Error(t, err)
}
