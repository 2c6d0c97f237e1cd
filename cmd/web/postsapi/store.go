package postsapi

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"post-manager/cmd/web/clients/postsclient"
	"post-manager/eventbus"
	"post-manager/events"
	"post-manager/internal/logger"
	"post-manager/internal/metrics"
	"post-manager/models"
)

// Backend 는 Store 가 감싸는 원격 posts 호출 집합이다. (*postsclient.Client 가 구현)
type Backend interface {
	List(ctx context.Context, params postsclient.ListParams) ([]models.Post, error)
	Create(ctx context.Context, in models.CreatePostRequest) (models.Post, error)
	Update(ctx context.Context, in models.UpdatePostRequest) (models.Post, error)
	Delete(ctx context.Context, id int) error
}

type Options struct {
	// CacheTTL 이 지난 목록 캐시는 다시 조회한다. 0 이면 무효화 전까지 유지한다.
	CacheTTL time.Duration
	// FetchTimeout 은 공유 목록 조회 1건의 최대 시간이다. 호출자가 먼저 포기해도 조회는 계속된다.
	FetchTimeout time.Duration
	// InstanceID 는 변경 이벤트의 source 로 쓰이며, 자신이 발행한 이벤트를 걸러낸다.
	InstanceID string
	// Bus 가 nil 이면 다른 인스턴스로 무효화를 전파하지 않는다.
	Bus eventbus.EventBus
	Now func() time.Time
}

const publishTimeout = 3 * time.Second

type cacheEntry struct {
	posts    []models.Post
	storedAt time.Time
}

// Store 는 posts 리소스 클라이언트에 목록 캐시를 붙인다.
//
// - 목록 결과는 (limit, search) 키로 캐시한다.
// - 같은 키의 동시 조회는 하나의 HTTP 요청으로 합친다.
// - 변경(create/update/delete)이 성공하면 모든 목록 캐시를 무효화한다. 로컬 패치는 하지 않는다.
// - 무효화 이전에 시작된 조회 결과는 캐시에 저장되지 않고, 무효화 이후 호출자와 공유되지도 않는다.
type Store struct {
	backend Backend
	opts    Options

	mu      sync.Mutex
	gen     uint64
	entries map[string]cacheEntry

	group singleflight.Group
}

func NewStore(backend Backend, opts Options) *Store {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		backend: backend,
		opts:    opts,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(params postsclient.ListParams) string {
	return params.Query().Encode()
}

// List 는 캐시된 목록을 반환하거나 원격 조회를 수행한다.
func (s *Store) List(ctx context.Context, params postsclient.ListParams) ([]models.Post, error) {
	key := cacheKey(params)

	s.mu.Lock()
	gen := s.gen
	if e, ok := s.entries[key]; ok && !s.expired(e) {
		s.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return slices.Clone(e.posts), nil
	}
	s.mu.Unlock()
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	ch := s.group.DoChan(fmt.Sprintf("%d|%s", gen, key), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()

		posts, err := s.backend.List(fetchCtx, params)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.entries[key] = cacheEntry{posts: posts, storedAt: s.opts.Now()}
		}
		s.mu.Unlock()
		return posts, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]models.Post)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) expired(e cacheEntry) bool {
	return s.opts.CacheTTL > 0 && s.opts.Now().Sub(e.storedAt) >= s.opts.CacheTTL
}

func (s *Store) Create(ctx context.Context, in models.CreatePostRequest) (models.Post, error) {
	post, err := s.backend.Create(ctx, in)
	if err != nil {
		return models.Post{}, err
	}
	s.afterMutation(ctx, events.PostCreated, post.ID)
	return post, nil
}

func (s *Store) Update(ctx context.Context, in models.UpdatePostRequest) (models.Post, error) {
	post, err := s.backend.Update(ctx, in)
	if err != nil {
		return models.Post{}, err
	}
	s.afterMutation(ctx, events.PostUpdated, in.ID)
	return post, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, events.PostDeleted, id)
	return nil
}

// Invalidate 는 모든 목록 캐시를 버린다. origin 은 메트릭 라벨(local, remote)이다.
func (s *Store) Invalidate(origin string) {
	s.mu.Lock()
	s.gen++
	clear(s.entries)
	s.mu.Unlock()
	metrics.CacheInvalidations.WithLabelValues(origin).Inc()
}

func (s *Store) afterMutation(ctx context.Context, t events.EventType, postID int) {
	s.Invalidate("local")
	if s.opts.Bus == nil {
		return
	}

	ev := events.NewPostChanged(t, s.opts.InstanceID, postID)
	evt, err := eventbus.NewJSONEvent(ev.ID, ev)
	if err != nil {
		logger.Log.Errorf("post changed event build failed: %v", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.opts.Bus.Publish(pubCtx, eventbus.TopicPostEvents.Base(), evt); err != nil {
		logger.WarnWithFields("post changed event publish failed", logger.Fields{
			"type":    string(t),
			"post_id": postID,
			"error":   err.Error(),
		})
	}
}

// WatchRemote 는 다른 인스턴스가 발행한 변경 이벤트를 구독해 로컬 캐시를 무효화한다.
// ctx 가 끝날 때까지 블록된다.
func (s *Store) WatchRemote(ctx context.Context, groupID string) error {
	if s.opts.Bus == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return eventbus.SubscribeJSON(ctx, s.opts.Bus, groupID, eventbus.TopicPostEvents,
		func(ctx context.Context, ev events.PostChangedEvent, meta eventbus.Event) error {
			if ev.Source == s.opts.InstanceID {
				return nil
			}
			logger.DebugWithFields("remote post change, invalidating list cache", logger.Fields{
				"type":    string(ev.Type),
				"post_id": ev.PostID,
				"source":  ev.Source,
			})
			s.Invalidate("remote")
			return nil
		})
}
