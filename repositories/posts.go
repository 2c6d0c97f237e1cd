package repositories

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"post-manager/models"
)

var ErrPostNotFound = errors.New("post not found")

// ListPostsOptions 는 목록 조회 조건이다.
// Limit 가 0 이하면 제한 없음, TitleLike 는 제목 부분 일치(대소문자 무시)다.
type ListPostsOptions struct {
	Limit     int
	TitleLike string
}

const maxInsertRetries = 5

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// List returns posts ordered by id ascending
func (r *PostRepository) List(ctx context.Context, opt ListPostsOptions) ([]models.Post, error) {
	filter := bson.M{}
	if opt.TitleLike != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(opt.TitleLike), "$options": "i"}
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if opt.Limit > 0 {
		findOpts.SetLimit(int64(opt.Limit))
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]models.Post, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID returns a post by numeric id
func (r *PostRepository) FindByID(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert assigns id = max(id)+1 and stores the post.
// 동시에 같은 id 를 할당하면 _id 중복 에러가 나므로 다시 시도한다.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	for range maxInsertRetries {
		id, err := r.nextID(ctx)
		if err != nil {
			return err
		}
		p.ID = id
		_, err = r.col.InsertOne(ctx, p)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return err
	}
	return errors.New("insert post: id allocation kept colliding")
}

func (r *PostRepository) nextID(ctx context.Context) (int, error) {
	var last models.Post
	err := r.col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.ID + 1, nil
}

// Replace overwrites title, body and user_id of an existing post
func (r *PostRepository) Replace(ctx context.Context, p models.Post) error {
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{
		"$set": bson.M{"title": p.Title, "body": p.Body, "user_id": p.UserID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Delete removes a post. Deleting a missing post is not an error.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// InsertMany stores posts with their ids as given (seeding)
func (r *PostRepository) InsertMany(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, p)
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}
