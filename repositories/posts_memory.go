package repositories

import (
	"context"
	"slices"
	"strings"
	"sync"

	"post-manager/models"
)

// MemoryPostRepository 는 PostRepository 와 같은 동작을 메모리에서 제공한다. (기본 저장소, 테스트용)
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []models.Post // id 오름차순
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{}
}

func (r *MemoryPostRepository) List(_ context.Context, opt ListPostsOptions) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(opt.TitleLike)
	items := make([]models.Post, 0)
	for _, p := range r.posts {
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		items = append(items, p)
		if opt.Limit > 0 && len(items) == opt.Limit {
			break
		}
	}
	return items, nil
}

func (r *MemoryPostRepository) FindByID(_ context.Context, id int) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index(id)
	if !ok {
		return nil, ErrPostNotFound
	}
	p := r.posts[i]
	return &p, nil
}

func (r *MemoryPostRepository) Insert(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = 1
	if n := len(r.posts); n > 0 {
		p.ID = r.posts[n-1].ID + 1
	}
	r.posts = append(r.posts, *p)
	return nil
}

func (r *MemoryPostRepository) Replace(_ context.Context, p models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index(p.ID)
	if !ok {
		return ErrPostNotFound
	}
	r.posts[i] = p
	return nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index(id); ok {
		r.posts = slices.Delete(r.posts, i, i+1)
	}
	return nil
}

func (r *MemoryPostRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

func (r *MemoryPostRepository) InsertMany(_ context.Context, posts []models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, posts...)
	slices.SortFunc(r.posts, func(a, b models.Post) int { return a.ID - b.ID })
	return nil
}

// index 는 r.mu 를 잡은 상태에서 호출해야 한다.
func (r *MemoryPostRepository) index(id int) (int, bool) {
	return slices.BinarySearchFunc(r.posts, id, func(p models.Post, id int) int { return p.ID - id })
}
