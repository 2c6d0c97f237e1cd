package dto

import (
	"post-manager/models"
)

// PostDTO is the jsonplaceholder-compatible post representation
// swagger:model PostDTO
type PostDTO struct {
	ID     int    `json:"id" example:"1"`
	Title  string `json:"title" example:"sunt aut facere"`
	Body   string `json:"body" example:"quia et suscipit"`
	UserID int    `json:"userId" example:"1"`
}

func NewPostDTO(p models.Post) PostDTO {
	return PostDTO{
		ID:     p.ID,
		Title:  p.Title,
		Body:   p.Body,
		UserID: p.UserID,
	}
}

// PostInput is the request body of POST /posts and PUT /posts/{id}
// swagger:model PostInput
type PostInput struct {
	Title  string `json:"title" example:"sunt aut facere"`
	Body   string `json:"body" example:"quia et suscipit"`
	UserID int    `json:"userId" example:"1"`
}

// ErrorResponse is returned for 4xx/5xx responses
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
