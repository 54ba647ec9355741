package dto

import (
	"time"

	"blog-api/models"
)

// PostDTO is the public shape of a post. ID is the ObjectID hex string.
type PostDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Image     string    `json:"image"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPostDTO constructs PostDTO from models.Post
func NewPostDTO(p models.Post) PostDTO {
	return PostDTO{
		ID:        p.ID.Hex(),
		Title:     p.Title,
		Slug:      p.Slug,
		Author:    p.Author,
		Date:      p.Date,
		Image:     p.Image,
		Summary:   p.Summary,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreatePostRequest is the body of POST /api/blogs.
// Slug and Date are optional; Date is free-form date text.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Slug    string `json:"slug"`
	Author  string `json:"author" validate:"required"`
	Date    string `json:"date"`
	Image   string `json:"image" validate:"required"`
	Summary string `json:"summary" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest is the body of PUT /api/blogs/{id}. Nil fields are left untouched.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1"`
	Slug    *string `json:"slug" validate:"omitnil,min=1"`
	Author  *string `json:"author" validate:"omitnil,min=1"`
	Date    *string `json:"date"`
	Image   *string `json:"image" validate:"omitnil,min=1"`
	Summary *string `json:"summary" validate:"omitnil,min=1"`
	Content *string `json:"content" validate:"omitnil,min=1"`
}

type PostMessageDTO struct {
	Message string  `json:"message" example:"Blog created successfully"`
	Post    PostDTO `json:"post"`
}

type CountDTO struct {
	Count int64 `json:"count" example:"42"`
}
