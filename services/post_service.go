package services

import (
	"context"
	"errors"
	"strings"

	"post-manager/dto"
	"post-manager/internal/logger"
	"post-manager/models"
	"post-manager/repositories"
)

var ErrInvalidPost = errors.New("title and body are required")

// PostRepository 는 PostService 가 사용하는 저장소다.
// *repositories.PostRepository(Mongo) 와 *repositories.MemoryPostRepository 가 구현한다.
type PostRepository interface {
	List(ctx context.Context, opt repositories.ListPostsOptions) ([]models.Post, error)
	FindByID(ctx context.Context, id int) (*models.Post, error)
	Insert(ctx context.Context, p *models.Post) error
	Replace(ctx context.Context, p models.Post) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, posts []models.Post) error
}

// PostService encapsulates validation and DTO mapping for the /posts resource
type PostService struct {
	repo PostRepository
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

type ListPostsInput struct {
	Limit     int
	TitleLike string
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]dto.PostDTO, error) {
	items, err := s.repo.List(ctx, repositories.ListPostsOptions{
		Limit:     in.Limit,
		TitleLike: in.TitleLike,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.PostDTO, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewPostDTO(p))
	}
	return out, nil
}

func (s *PostService) GetByID(ctx context.Context, id int) (*dto.PostDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := dto.NewPostDTO(*p)
	return &d, nil
}

func (s *PostService) Create(ctx context.Context, in dto.PostInput) (*dto.PostDTO, error) {
	p, err := validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, &p); err != nil {
		return nil, err
	}
	d := dto.NewPostDTO(p)
	return &d, nil
}

func (s *PostService) Update(ctx context.Context, id int, in dto.PostInput) (*dto.PostDTO, error) {
	p, err := validate(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, err
	}
	d := dto.NewPostDTO(p)
	return &d, nil
}

func (s *PostService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Seed 는 저장소가 비어 있을 때만 n 개의 샘플 게시글을 넣는다.
func (s *PostService) Seed(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := s.repo.InsertMany(ctx, repositories.SeedPosts(n)); err != nil {
		return err
	}
	logger.InfoWithFields("seeded posts", logger.Fields{"count": n})
	return nil
}

func validate(in dto.PostInput) (models.Post, error) {
	p := models.Post{
		Title:  strings.TrimSpace(in.Title),
		Body:   strings.TrimSpace(in.Body),
		UserID: in.UserID,
	}
	if p.Title == "" || p.Body == "" {
		return models.Post{}, ErrInvalidPost
	}
	return p, nil
}
