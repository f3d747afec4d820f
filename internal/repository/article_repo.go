package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/pkg/errors"
)

const articleColumns = "id, title, content, category_id, author, image, created_at"

var (
	articleInsertCols = []string{"id", "title", "content", "category_id", "author", "image", "created_at"}
	articleUpdateCols = []string{"title", "content", "category_id", "author", "image", "created_at"}
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// List returns one page of articles, newest first, and the filtered total
func (r *articleRepo) List(ctx context.Context, q models.ArticleQuery) ([]models.Article, int, error) {
	where := ""
	args := []interface{}{}
	if q.Search != "" {
		where = " WHERE " + likeCond(r.db.Dialect, "title") + " OR " + likeCond(r.db.Dialect, "content")
		args = append(args, likePattern(q.Search), likePattern(q.Search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM articles"+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count articles")
	}

	articles := []models.Article{}
	query := r.db.Rebind("SELECT " + articleColumns + " FROM articles" + where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &articles, query, append(args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, errors.Wrap(err, "list articles")
	}

	return articles, total, nil
}

// GetByID retrieves an article by ID, nil when absent
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.GetContext(ctx, &article, r.db.Rebind("SELECT "+articleColumns+" FROM articles WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get article")
	}
	return &article, nil
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "articles", id)
}

// Upsert inserts the article or overwrites the row with the same id.
// It reports true when a new row was created.
func (r *articleRepo) Upsert(ctx context.Context, article *models.Article) (bool, error) {
	var created bool
	upsert := r.db.Dialect.Upsert("articles", "id", articleInsertCols, articleUpdateCols)

	err := r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var found bool
		if err := tx.GetContext(ctx, &found, tx.Rebind("SELECT EXISTS(SELECT 1 FROM articles WHERE id = ?)"), article.ID); err != nil {
			return errors.Wrap(err, "check article exists")
		}
		created = !found

		_, err := tx.ExecContext(ctx, tx.Rebind(upsert),
			article.ID, article.Title, article.Content, article.CategoryID,
			article.Author, article.Image, article.CreatedAt,
		)
		return errors.Wrap(err, "upsert article")
	})

	return created, err
}

// Update overwrites all mutable fields and reports whether the row existed
func (r *articleRepo) Update(ctx context.Context, article *models.Article) (bool, error) {
	query := r.db.Rebind(`
		UPDATE articles
		SET title = ?, content = ?, category_id = ?, author = ?, image = ?, created_at = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		article.Title, article.Content, article.CategoryID, article.Author,
		article.Image, article.CreatedAt, article.ID,
	)
	if err != nil {
		return false, errors.Wrap(err, "update article")
	}
	return affected(res)
}

// Delete removes an article. Comments referencing it are left in place.
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "articles", id)
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "articles")
}
