package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Comment represents a comment on an article. ParentID links replies.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	ArticleID string    `json:"articleId" db:"article_id"`
	UserID    string    `json:"userId" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Text      string    `json:"text" db:"text"`
	ParentID  *string   `json:"parentId" db:"parent_id"`
	Files     FileList  `json:"files" db:"files"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CommentRequest is the body of POST /api/comments, as JSON or multipart form
type CommentRequest struct {
	ArticleID string  `json:"articleId" form:"articleId" binding:"required,uuid"`
	UserID    string  `json:"userId" form:"userId" binding:"required,notblank,max=255"`
	UserName  string  `json:"userName" form:"userName" binding:"required,notblank,max=255"`
	Text      string  `json:"text" form:"text" binding:"required,notblank,max=10000"`
	ParentID  *string `json:"parentId" form:"parentId" binding:"omitempty,uuid"`
}

// CommentUpdateRequest is the body of PUT /api/comments/:id
type CommentUpdateRequest struct {
	UserName string `json:"userName" binding:"required,notblank,max=255"`
	Text     string `json:"text" binding:"required,notblank,max=10000"`
}

// CommentQuery filters the comment listing
type CommentQuery struct {
	Page
	ArticleID string
}

// MaxCommentFiles is the attachment ceiling per comment
const MaxCommentFiles = 5

// FileList holds attachment URLs, stored as a JSON array
type FileList []string

// Value implements driver.Valuer
func (f FileList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (f *FileList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = FileList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported files column type %T", src)
	}

	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		return err
	}
	if files == nil {
		files = []string{}
	}
	*f = files
	return nil
}
