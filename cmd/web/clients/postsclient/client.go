package postsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"post-manager/internal/httpclient"
	"post-manager/models"
)

// Client는 원격 /posts REST 리소스를 호출하는 얇은 클라이언트다.
//
// - 캐싱/무효화는 알지 않고 순수하게 네 가지 호출(list/create/update/delete)만 수행한다.
// - 재시도하지 않는다. 실패는 전송 에러 또는 *httpclient.HTTPError 로 그대로 반환된다.
//
// baseURL 예: https://jsonplaceholder.typicode.com/
type Client struct {
	base *httpclient.BaseClient
}

// DefaultLimit 는 Limit 이 지정되지 않았을 때 사용하는 조회 개수다.
const DefaultLimit = 10

var ErrNotFound = errors.New("post not found")

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{base: httpclient.NewBaseClient(baseURL, httpclient.Config{Timeout: timeout})}
}

// NewWithBase 는 이미 구성된 BaseClient 를 사용한다. (테스트용 transport 주입 등)
func NewWithBase(base *httpclient.BaseClient) *Client {
	return &Client{base: base}
}

type ListParams struct {
	Limit  int
	Search string
}

// Query 는 ListParams 를 쿼리 파라미터로 정규화한다.
// title_like 는 검색어가 비어 있지 않을 때만 추가한다.
func (p ListParams) Query() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("_limit", strconv.Itoa(limit))
	if p.Search != "" {
		q.Set("title_like", p.Search)
	}
	return q
}

// List 는 GET /posts?_limit=<n>&title_like=<text> 를 호출한다.
func (c *Client) List(ctx context.Context, params ListParams) ([]models.Post, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/posts", params.Query(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posts-api List: %w", err)
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.NewHTTPError("posts-api List", resp)
	}

	var out []models.Post
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("posts-api List: decode: %w", err)
	}
	if out == nil {
		out = []models.Post{}
	}
	return out, nil
}

// Create 는 POST /posts 를 호출해 생성된 게시글을 반환한다.
func (c *Client) Create(ctx context.Context, in models.CreatePostRequest) (models.Post, error) {
	var out models.Post
	err := c.sendJSON(ctx, "posts-api Create", http.MethodPost, "/posts", in, &out)
	return out, err
}

// Update 는 PUT /posts/:id 로 title/body/userId 를 통째로 교체한다.
func (c *Client) Update(ctx context.Context, in models.UpdatePostRequest) (models.Post, error) {
	var out models.Post
	relPath := path.Join("/posts", strconv.Itoa(in.ID))
	err := c.sendJSON(ctx, "posts-api Update", http.MethodPut, relPath, in, &out)
	return out, err
}

// Delete 는 DELETE /posts/:id 를 호출한다.
func (c *Client) Delete(ctx context.Context, id int) error {
	relPath := path.Join("/posts", strconv.Itoa(id))
	req, err := c.base.NewRequest(ctx, http.MethodDelete, relPath, nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("posts-api Delete: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case httpclient.IsSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("posts-api Delete %d: %w", id, ErrNotFound)
	default:
		return httpclient.NewHTTPError("posts-api Delete", resp)
	}
}

// Health 는 원격 리소스가 응답하는지 _limit=1 조회로 확인한다.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.List(ctx, ListParams{Limit: 1})
	return err
}

func (c *Client) sendJSON(ctx context.Context, op, method, relPath string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := c.base.NewRequest(ctx, method, relPath, nil, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case httpclient.IsSuccess(resp.StatusCode):
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return httpclient.NewHTTPError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
