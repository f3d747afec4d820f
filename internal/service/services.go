package service

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article operations
type ArticleService interface {
	List(ctx context.Context, params models.ListParams) (*models.ArticleList, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	// Save creates the article or overwrites the one with the same id; true means created
	Save(ctx context.Context, req *models.ArticleRequest) (*models.Article, bool, error)
	Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, id string) error
}

// CategoryService defines the interface for article category operations
type CategoryService interface {
	List(ctx context.Context, params models.ListParams) ([]models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// CommentService defines the interface for comment operations
type CommentService interface {
	List(ctx context.Context, params models.ListParams, articleID string) ([]models.Comment, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, req *models.CommentRequest, files []*multipart.FileHeader) (*models.Comment, error)
	Update(ctx context.Context, id string, req *models.CommentUpdateRequest) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// UserService defines the interface for user operations
type UserService interface {
	List(ctx context.Context, params models.ListParams) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, req *models.UserRequest) (*models.User, error)
	Update(ctx context.Context, id string, req *models.UserRequest) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// DirectoryService defines the interface for the useful services directory
type DirectoryService interface {
	List(ctx context.Context, params models.ListParams) (*models.ServiceList, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, req *models.ServiceRequest) (*models.Service, error)
	Update(ctx context.Context, id string, req *models.ServiceRequest) (*models.Service, error)
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.ServiceCategory, error)
	CreateCategory(ctx context.Context, req *models.ServiceCategoryRequest) (*models.ServiceCategory, error)
}

// ApprovalService defines the interface for approval tracking
type ApprovalService interface {
	// List returns one page and the total page count
	List(ctx context.Context, params models.ListParams, filter models.ApprovalFilter) ([]models.Approval, int, error)
	Ingest(ctx context.Context, batch *models.ApprovalBatch) (int, error)
	PurgePreviousMonth(ctx context.Context) (*models.PurgeResult, error)
}

// ExportService defines the interface for streaming exports and resource counts
type ExportService interface {
	StreamApprovals(ctx context.Context, w http.ResponseWriter, format string, filter models.ApprovalFilter) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// MaintenanceService runs scheduled housekeeping
type MaintenanceService interface {
	Start() error
	Stop(ctx context.Context)
}

// FileStore persists comment attachments
type FileStore interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, url string) error
}

// Services holds all service interfaces
type Services struct {
	Article     ArticleService
	Category    CategoryService
	Comment     CommentService
	User        UserService
	Directory   DirectoryService
	Approval    ApprovalService
	Export      ExportService
	Maintenance MaintenanceService
}

// clock is swapped in tests
type clock func() time.Time

// NewServices creates all services
func NewServices(repos *repository.Repositories, store cache.Store, files FileStore, cfg *config.Config, log zerolog.Logger) *Services {
	now := clock(time.Now)
	approvalSvc := newApprovalService(repos.Approval, now, log)

	return &Services{
		Article:     newArticleService(repos.Article, repos.Category, store, now, log),
		Category:    newCategoryService(repos.Category, store, log),
		Comment:     newCommentService(repos.Comment, repos.Article, store, files, now, log),
		User:        newUserService(repos.User, now, log),
		Directory:   newDirectoryService(repos.Service, store, now, log),
		Approval:    approvalSvc,
		Export:      newExportService(repos, log),
		Maintenance: newMaintenanceService(cfg.Maintenance, approvalSvc, store, log),
	}
}
