package repository

import (
	"context"
	"database/sql"

	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
	"github.com/pkg/errors"
)

// password is never selected back out
const userColumns = "id, name, email, role, created_at"

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// List returns users newest first. A nil page returns all of them.
func (r *userRepo) List(ctx context.Context, page *models.Page) ([]models.User, error) {
	users := []models.User{}
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at DESC, id"
	args := []interface{}{}
	if page != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset())
	}

	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// GetByID retrieves a user by ID, nil when absent
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := r.db.Rebind("INSERT INTO users (id, name, email, password, role, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Password, user.Role, user.CreatedAt)
	return errors.Wrap(err, "insert user")
}

// Update overwrites name, email, password and role
func (r *userRepo) Update(ctx context.Context, user *models.User) (bool, error) {
	query := r.db.Rebind("UPDATE users SET name = ?, email = ?, password = ?, role = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Password, user.Role, user.ID)
	if err != nil {
		return false, errors.Wrap(err, "update user")
	}
	return affected(res)
}

// UpdateRole changes only the role
func (r *userRepo) UpdateRole(ctx context.Context, id, role string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET role = ? WHERE id = ?"), role, id)
	if err != nil {
		return false, errors.Wrap(err, "update user role")
	}
	return affected(res)
}

// Delete removes a user
func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "users", id)
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "users")
}
