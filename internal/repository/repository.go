package repository

import (
	"context"
	"time"

	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/models"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	List(ctx context.Context, q models.ArticleQuery) ([]models.Article, int, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, article *models.Article) (bool, error)
	Update(ctx context.Context, article *models.Article) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context, page *models.Page) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	List(ctx context.Context, q models.CommentQuery) ([]models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id, userName, text string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListReplyIDs(ctx context.Context, parentID string) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	List(ctx context.Context, page *models.Page) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) (bool, error)
	UpdateRole(ctx context.Context, id, role string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ApprovalRepository defines the interface for approval data operations
type ApprovalRepository interface {
	List(ctx context.Context, q models.ApprovalQuery) ([]models.Approval, int, error)
	BatchInsert(ctx context.Context, approvals []*models.Approval) (int, error)
	DeleteBetween(ctx context.Context, from, to time.Time) (int64, error)
	StreamAll(ctx context.Context, filter models.ApprovalFilter, callback func(*models.Approval) error) error
	Count(ctx context.Context) (int, error)
}

// ServiceRepository defines the interface for the services directory
type ServiceRepository interface {
	List(ctx context.Context, q models.ServiceQuery) ([]models.Service, int, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]models.ServiceCategory, error)
	CreateCategory(ctx context.Context, category *models.ServiceCategory) error
	CategoryExists(ctx context.Context, id string) (bool, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Category CategoryRepository
	Comment  CommentRepository
	User     UserRepository
	Approval ApprovalRepository
	Service  ServiceRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Category: NewCategoryRepo(db),
		Comment:  NewCommentRepo(db),
		User:     NewUserRepo(db),
		Approval: NewApprovalRepo(db),
		Service:  NewServiceRepo(db),
	}
}
