package repository

import (
	"context"
	"database/sql"

	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/pkg/errors"
)

const serviceSelect = `
	SELECT s.id, s.title, s.url, s.description, s.category_id, s.created_at, c.name AS category_name
	FROM useful_services s
	LEFT JOIN service_categories c ON s.category_id = c.id`

// serviceRepo is the concrete implementation of ServiceRepository
type serviceRepo struct {
	db *database.DB
}

// NewServiceRepo creates a new services directory repository
func NewServiceRepo(db *database.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

// List returns one page of services with their category names, newest first
func (r *serviceRepo) List(ctx context.Context, q models.ServiceQuery) ([]models.Service, int, error) {
	where := ""
	args := []interface{}{}
	if q.Search != "" {
		where = " WHERE " + likeCond(r.db.Dialect, "s.title") + " OR " + likeCond(r.db.Dialect, "s.description")
		args = append(args, likePattern(q.Search), likePattern(q.Search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM useful_services s"+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count services")
	}

	services := []models.Service{}
	query := r.db.Rebind(serviceSelect + where + " ORDER BY s.created_at DESC, s.id LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &services, query, append(args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, errors.Wrap(err, "list services")
	}

	return services, total, nil
}

// GetByID retrieves a service by ID, nil when absent
func (r *serviceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	err := r.db.GetContext(ctx, &service, r.db.Rebind(serviceSelect+" WHERE s.id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get service")
	}
	return &service, nil
}

func (r *serviceRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "useful_services", id)
}

func (r *serviceRepo) Create(ctx context.Context, service *models.Service) error {
	query := r.db.Rebind(`
		INSERT INTO useful_services (id, title, url, description, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		service.ID, service.Title, service.URL, service.Description, service.CategoryID, service.CreatedAt,
	)
	return errors.Wrap(err, "insert service")
}

func (r *serviceRepo) Update(ctx context.Context, service *models.Service) (bool, error) {
	query := r.db.Rebind("UPDATE useful_services SET title = ?, url = ?, description = ?, category_id = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, service.Title, service.URL, service.Description, service.CategoryID, service.ID)
	if err != nil {
		return false, errors.Wrap(err, "update service")
	}
	return affected(res)
}

func (r *serviceRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "useful_services", id)
}

func (r *serviceRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "useful_services")
}

// ListCategories returns all service categories ordered by name
func (r *serviceRepo) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	categories := []models.ServiceCategory{}
	if err := r.db.SelectContext(ctx, &categories, "SELECT id, name FROM service_categories ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "list service categories")
	}
	return categories, nil
}

func (r *serviceRepo) CreateCategory(ctx context.Context, category *models.ServiceCategory) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("INSERT INTO service_categories (id, name) VALUES (?, ?)"), category.ID, category.Name)
	return errors.Wrap(err, "insert service category")
}

func (r *serviceRepo) CategoryExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, "service_categories", id)
}
