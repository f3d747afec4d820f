package repository

import (
	"context"
	"database/sql"

	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/pkg/errors"
)

type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// List returns categories ordered by name. A nil page returns all of them.
func (r *categoryRepo) List(ctx context.Context, page *models.Page) ([]models.Category, error) {
	categories := []models.Category{}
	query := "SELECT id, name FROM categories ORDER BY name, id"
	args := []interface{}{}
	if page != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset())
	}

	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, r.db.Rebind("SELECT id, name FROM categories WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get category")
	}
	return &category, nil
}

func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "categories", id)
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("INSERT INTO categories (id, name) VALUES (?, ?)"), category.ID, category.Name)
	return errors.Wrap(err, "insert category")
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE categories SET name = ? WHERE id = ?"), category.Name, category.ID)
	if err != nil {
		return false, errors.Wrap(err, "update category")
	}
	return affected(res)
}

// Delete removes a category; articles referencing it fall back to no category
func (r *categoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "categories", id)
}

func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "categories")
}
