package repository

import (
	"context"
	"database/sql"

	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/pkg/errors"
)

const commentColumns = "id, article_id, user_id, user_name, text, parent_id, files, created_at"

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// List returns comments newest first, optionally for a single article
func (r *commentRepo) List(ctx context.Context, q models.CommentQuery) ([]models.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments"
	args := []interface{}{}
	if q.ArticleID != "" {
		query += " WHERE article_id = ?"
		args = append(args, q.ArticleID)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset())

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

// GetByID retrieves a comment by ID, nil when absent
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, r.db.Rebind("SELECT "+commentColumns+" FROM comments WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get comment")
	}
	return &comment, nil
}

// Exists checks if a comment with the given ID exists
func (r *commentRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "comments", id)
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := r.db.Rebind(`
		INSERT INTO comments (id, article_id, user_id, user_name, text, parent_id, files, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.UserID, comment.UserName,
		comment.Text, comment.ParentID, comment.Files, comment.CreatedAt,
	)
	return errors.Wrap(err, "insert comment")
}

// Update replaces the text and author name of a comment
func (r *commentRepo) Update(ctx context.Context, id, userName, text string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE comments SET user_name = ?, text = ? WHERE id = ?"), userName, text, id)
	if err != nil {
		return false, errors.Wrap(err, "update comment")
	}
	return affected(res)
}

// Delete removes a single comment. Replies keep their parent_id.
func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "comments", id)
}

// ListReplyIDs returns the ids of direct replies to parentID
func (r *commentRepo) ListReplyIDs(ctx context.Context, parentID string) ([]string, error) {
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind("SELECT id FROM comments WHERE parent_id = ?"), parentID); err != nil {
		return nil, errors.Wrap(err, "list replies")
	}
	return ids, nil
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "comments")
}
