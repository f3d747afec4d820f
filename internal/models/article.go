package models

import (
	"time"
)

// Article represents a wiki article
type Article struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	CategoryID *string   `json:"categoryId" db:"category_id"`
	Author     string    `json:"author" db:"author"`
	Image      *string   `json:"image" db:"image"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ArticleRequest is the body of POST and PUT /api/articles
type ArticleRequest struct {
	ID         string     `json:"id" binding:"omitempty,uuid"`
	Title      string     `json:"title" binding:"required,notblank,max=500"`
	Content    string     `json:"content" binding:"required"`
	CategoryID *string    `json:"categoryId"`
	Author     string     `json:"author" binding:"required,notblank,max=255"`
	Image      *string    `json:"image" binding:"omitempty,max=2048"`
	CreatedAt  *time.Time `json:"createdAt"`
}

// ArticleQuery filters the article listing
type ArticleQuery struct {
	Page
	Search string
}

// ArticleList is the paginated article envelope
type ArticleList struct {
	Items []Article `json:"items"`
	Total int       `json:"total"`
}
