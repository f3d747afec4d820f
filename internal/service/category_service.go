package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

// categories and users are unpaginated unless asked
const defaultOptionalLimit = 50

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	cache      cache.Store
	log        zerolog.Logger
}

func newCategoryService(categories repository.CategoryRepository, store cache.Store, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: categories,
		cache:      store,
		log:        log.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context, params models.ListParams) ([]models.Category, error) {
	var page *models.Page
	if params.Requested() {
		p := params.Resolve(defaultOptionalLimit)
		page = &p
	}
	return s.categories.List(ctx, page)
}

func (s *categoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errs.NewNotFoundError("Category not found")
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	category := &models.Category{ID: req.ID, Name: req.Name}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error) {
	category := &models.Category{ID: id, Name: req.Name}

	found, err := s.categories.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("Category not found")
	}
	return category, nil
}

// Delete removes a category; its articles keep existing with no category
func (s *categoryService) Delete(ctx context.Context, id string) error {
	found, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFoundError("Category not found")
	}

	if err := s.cache.Invalidate(ctx, tagArticles); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate article cache")
	}
	return nil
}
