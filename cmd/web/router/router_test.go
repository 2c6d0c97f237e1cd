package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	mockrouter "post-manager/api/router"
	"post-manager/cmd/web/clients/postsclient"
	"post-manager/cmd/web/page"
	"post-manager/cmd/web/postsapi"
	"post-manager/cmd/web/session"
	"post-manager/repositories"
	"post-manager/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t      *testing.T
	web    *httptest.Server
	client *http.Client
	repo   *repositories.MemoryPostRepository
}

func newHarness(t *testing.T, seed int) *harness {
	t.Helper()
	repo := repositories.NewMemoryPostRepository()
	require.NoError(t, repo.InsertMany(context.Background(), repositories.SeedPosts(seed)))
	api := httptest.NewServer(mockrouter.New(services.NewPostService(repo), nil))
	t.Cleanup(api.Close)

	h := newWebHarness(t, api.URL+"/")
	h.repo = repo
	return h
}

func newWebHarness(t *testing.T, baseURL string) *harness {
	t.Helper()
	client := postsclient.New(baseURL, 5*time.Second)
	store := postsapi.NewStore(client, postsapi.Options{CacheTTL: time.Minute})
	ctrl := page.NewController(store, session.NewMemoryStore(time.Hour), page.Config{})

	web := httptest.NewServer(New(Deps{
		Controller:    ctrl,
		Health:        client,
		ListWait:      5 * time.Second,
		SessionCookie: "pm_session",
		SessionTTL:    time.Hour,
	}))
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, web: web, client: &http.Client{Jar: jar}}
}

// post 는 폼을 제출하고 리다이렉트를 따라간 최종 응답을 반환한다.
func (h *harness) post(path string, form url.Values) (int, *html.Node) {
	h.t.Helper()
	resp, err := h.client.PostForm(h.web.URL+path, form)
	require.NoError(h.t, err)
	return h.read(resp)
}

func (h *harness) get(path string) (int, *html.Node) {
	h.t.Helper()
	resp, err := h.client.Get(h.web.URL + path)
	require.NoError(h.t, err)
	return h.read(resp)
}

func (h *harness) read(resp *http.Response) (int, *html.Node) {
	h.t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	doc, err := html.Parse(strings.NewReader(string(body)))
	require.NoError(h.t, err)
	return resp.StatusCode, doc
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func byID(doc *html.Node, id string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode {
			if v, _ := attr(n, "id"); v == id {
				found = n
			}
		}
	})
	return found
}

func byClass(doc *html.Node, class string) []*html.Node {
	var out []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		v, _ := attr(n, "class")
		for _, c := range strings.Fields(v) {
			if c == class {
				out = append(out, n)
				return
			}
		}
	})
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func disabled(n *html.Node) bool {
	_, ok := attr(n, "disabled")
	return ok
}

func postIDs(doc *html.Node) []string {
	var ids []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "article" {
			v, _ := attr(n, "id")
			ids = append(ids, v)
		}
	})
	return ids
}

func TestIndexShowsFirstPage(t *testing.T) {
	h := newHarness(t, 25)

	status, doc := h.get("/")
	require.Equal(t, http.StatusOK, status)

	assert.Len(t, postIDs(doc), 10)
	assert.NotNil(t, byID(doc, "load-more"))
	assert.Nil(t, byID(doc, "post-form"))
	assert.Nil(t, byID(doc, "toast"))
	assert.Contains(t, text(byID(doc, "post-1")), "ID: 1")

	_, doc = h.post("/more", nil)
	assert.Len(t, postIDs(doc), 20)
	assert.NotNil(t, byID(doc, "load-more"))

	_, doc = h.post("/more", nil)
	assert.Len(t, postIDs(doc), 25)
	assert.Nil(t, byID(doc, "load-more"))
}

func TestCreatePost(t *testing.T) {
	h := newHarness(t, 3)

	_, doc := h.post("/form/create", nil)
	form := byID(doc, "post-form")
	require.NotNil(t, form)
	assert.Contains(t, text(form), "Create New Post")
	submit := byID(doc, "submit-post")
	require.NotNil(t, submit)
	assert.True(t, disabled(submit))
	assert.Equal(t, "Create Post", text(submit))

	status, doc := h.post("/posts", url.Values{"title": {"Hello"}, "body": {"   "}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotNil(t, byID(doc, "post-form"))
	n, _ := h.repo.Count(context.Background())
	assert.EqualValues(t, 3, n)

	status, doc = h.post("/posts", url.Values{"title": {" Hello "}, "body": {"World"}})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, byID(doc, "post-form"))
	assert.Contains(t, text(byID(doc, "toast")), "Post created successfully!")
	require.NotNil(t, byID(doc, "post-4"))
	assert.Contains(t, text(byID(doc, "post-4")), "Hello")

	_, doc = h.post("/toast/dismiss", nil)
	assert.Nil(t, byID(doc, "toast"))
}

func TestEditPost(t *testing.T) {
	h := newHarness(t, 3)

	_, doc := h.post("/posts/2/edit", nil)
	form := byID(doc, "post-form")
	require.NotNil(t, form)
	assert.Contains(t, text(form), "Edit Post")
	assert.Equal(t, "Update Post", text(byID(doc, "submit-post")))
	assert.False(t, disabled(byID(doc, "submit-post")))

	_, doc = h.post("/posts/2", url.Values{"title": {"changed title"}, "body": {"changed body"}})
	assert.Nil(t, byID(doc, "post-form"))
	assert.Contains(t, text(byID(doc, "toast")), "Post updated successfully!")
	item := byID(doc, "post-2")
	require.NotNil(t, item)
	assert.Contains(t, text(item), "changed title")
	assert.Contains(t, text(item), "changed body")
	assert.Contains(t, text(item), "ID: 2")
}

func TestCancelForm(t *testing.T) {
	h := newHarness(t, 3)

	h.post("/posts/1/edit", nil)
	_, doc := h.post("/form/cancel", url.Values{"title": {"x"}})
	assert.Nil(t, byID(doc, "post-form"))
	assert.Nil(t, byID(doc, "toast"))
}

func TestDeletePost(t *testing.T) {
	h := newHarness(t, 3)

	_, doc := h.post("/posts/1/delete", nil)
	assert.Len(t, byClass(byID(doc, "post-1"), "confirm-delete"), 1)
	assert.Empty(t, byClass(byID(doc, "post-2"), "confirm-delete"))

	_, doc = h.post("/posts/1/delete/cancel", nil)
	assert.Empty(t, byClass(doc, "confirm-delete"))
	assert.NotNil(t, byID(doc, "post-1"))

	// 확인 없이 확정하면 아무 일도 일어나지 않는다.
	_, doc = h.post("/posts/1/delete/confirm", nil)
	assert.NotNil(t, byID(doc, "post-1"))

	h.post("/posts/1/delete", nil)
	_, doc = h.post("/posts/1/delete/confirm", nil)
	assert.Nil(t, byID(doc, "post-1"))
	assert.Contains(t, text(byID(doc, "toast")), "Post deleted successfully!")
	for _, b := range byClass(doc, "delete") {
		assert.False(t, disabled(b))
	}
}

func TestSearch(t *testing.T) {
	h := newHarness(t, 25)

	first := repositories.SeedPosts(1)[0]
	word := strings.Fields(first.Title)[0]

	_, doc := h.post("/search", url.Values{"search": {word}})
	ids := postIDs(doc)
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.Contains(t, strings.ToLower(text(byID(doc, id))), word)
	}
	assert.Nil(t, byID(doc, "load-more"))
	assert.NotNil(t, byID(doc, "clear-search"))

	_, doc = h.post("/search", url.Values{"search": {"zzzz-no-such-title"}})
	assert.Empty(t, postIDs(doc))
	assert.Contains(t, text(byID(doc, "list-empty")), "No posts found")
	assert.NotNil(t, byID(doc, "no-matches"))

	_, doc = h.post("/search/clear", nil)
	assert.Len(t, postIDs(doc), 10)
	assert.NotNil(t, byID(doc, "load-more"))
}

func TestEmptyResource(t *testing.T) {
	h := newHarness(t, 0)

	_, doc := h.get("/")
	assert.Contains(t, text(byID(doc, "list-empty")), "No posts found")
	assert.Nil(t, byID(doc, "no-matches"))
}

func TestListFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)
	h := newWebHarness(t, down.URL+"/")

	status, doc := h.get("/")
	assert.Equal(t, http.StatusOK, status)
	errBox := byID(doc, "list-error")
	require.NotNil(t, errBox)
	assert.Contains(t, text(errBox), "Failed to load posts")
	assert.Contains(t, text(errBox), "Please try again later")
	assert.Empty(t, postIDs(doc))

	h.post("/form/create", nil)
	_, doc = h.post("/posts", url.Values{"title": {"t"}, "body": {"b"}})
	assert.Contains(t, text(byID(doc, "toast")), "Failed to create post. Please try again.")
	assert.NotNil(t, byID(doc, "post-form"))

	resp, err := h.client.Get(h.web.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLoadingStateWhenListIsSlow(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"title":"late","body":"b","userId":1}]`)
	}))
	t.Cleanup(slow.Close)
	t.Cleanup(func() { close(release) })

	client := postsclient.New(slow.URL+"/", 5*time.Second)
	store := postsapi.NewStore(client, postsapi.Options{CacheTTL: time.Minute})
	ctrl := page.NewController(store, session.NewMemoryStore(time.Hour), page.Config{})
	r := New(Deps{Controller: ctrl, ListWait: 20 * time.Millisecond, SessionCookie: "pm_session", SessionTTL: time.Hour})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := html.Parse(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.NotNil(t, byID(doc, "list-loading"))
	assert.Nil(t, byID(doc, "list-error"))
	assert.Contains(t, w.Body.String(), `url=/?wait=full`)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, 1)
	h.get("/")

	resp, err := h.client.Get(h.web.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "post_manager_http_requests_total")
}

func TestSubmitForFormNoLongerOpen(t *testing.T) {
	ctx := context.Background()
	seed := repositories.SeedPosts(10)

	testCases := []struct {
		name   string
		open   []string
		submit string
		target int
	}{
		{name: "edit form replaced by another edit", open: []string{"/posts/3/edit", "/posts/5/edit"}, submit: "/posts/3", target: 3},
		{name: "update path while create form is open", open: []string{"/form/create"}, submit: "/posts/7", target: 7},
		{name: "create path while edit form is open", open: []string{"/posts/4/edit"}, submit: "/posts", target: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 10)
			for _, path := range tc.open {
				h.post(path, nil)
			}

			status, doc := h.post(tc.submit, url.Values{"title": {"from an old tab"}, "body": {"stale body"}})
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, text(byID(doc, "toast")), page.MsgStaleForm)
			assert.NotNil(t, byID(doc, "post-form"))

			n, err := h.repo.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 10, n)
			for _, want := range seed {
				got, err := h.repo.FindByID(ctx, want.ID)
				require.NoError(t, err)
				assert.Equal(t, want.Title, got.Title, "post %d", want.ID)
				assert.Equal(t, want.Body, got.Body, "post %d", want.ID)
			}
			if tc.target > 0 {
				assert.NotContains(t, text(byID(doc, fmt.Sprintf("post-%d", tc.target))), "from an old tab")
			}
		})
	}
}

func TestCancelDeleteForOtherPostKeepsConfirmation(t *testing.T) {
	h := newHarness(t, 3)

	h.post("/posts/1/delete", nil)
	_, doc := h.post("/posts/2/delete/cancel", nil)
	assert.Len(t, byClass(byID(doc, "post-1"), "confirm-delete"), 1)

	_, doc = h.post("/posts/1/delete/cancel", nil)
	assert.Empty(t, byClass(doc, "confirm-delete"))
}
