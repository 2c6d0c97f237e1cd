package models

// Post represents a single post of the remote /posts resource
// Collection: posts (mock API only; _id is the numeric post id)
type Post struct {
	ID     int    `bson:"_id" json:"id"`
	Title  string `bson:"title" json:"title"`
	Body   string `bson:"body" json:"body"`
	UserID int    `bson:"user_id" json:"userId"`
}

// CreatePostRequest 는 POST /posts 요청 바디다.
type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// UpdatePostRequest 는 PUT /posts/:id 요청이다.
// ID 는 경로로만 전달되며 바디에는 포함되지 않는다.
type UpdatePostRequest struct {
	ID     int    `json:"-"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}
