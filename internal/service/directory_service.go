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

const defaultServiceLimit = 20

// directoryService is the concrete implementation of DirectoryService
type directoryService struct {
	services repository.ServiceRepository
	cache    cache.Store
	now      clock
	log      zerolog.Logger
}

func newDirectoryService(services repository.ServiceRepository, store cache.Store, now clock, log zerolog.Logger) *directoryService {
	return &directoryService{
		services: services,
		cache:    store,
		now:      now,
		log:      log.With().Str("service", "directory").Logger(),
	}
}

func (s *directoryService) List(ctx context.Context, params models.ListParams) (*models.ServiceList, error) {
	page := params.Resolve(defaultServiceLimit)
	term := params.Term()
	key := listKey("services", page, "q="+term)

	list, _, err := cache.Remember(ctx, s.cache, s.log, key, directoryTTL, []string{tagServices},
		func(ctx context.Context) (*models.ServiceList, error) {
			services, total, err := s.services.List(ctx, models.ServiceQuery{Page: page, Search: term})
			if err != nil {
				return nil, err
			}
			return &models.ServiceList{Services: services, Total: total}, nil
		})
	return list, err
}

func (s *directoryService) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, errs.NewNotFoundError("Service not found")
	}
	return service, nil
}

func (s *directoryService) Create(ctx context.Context, req *models.ServiceRequest) (*models.Service, error) {
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	service := &models.Service{
		ID:          uuid.NewString(),
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		CategoryID:  categoryID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tagServices)

	return s.Get(ctx, service.ID)
}

func (s *directoryService) Update(ctx context.Context, id string, req *models.ServiceRequest) (*models.Service, error) {
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	found, err := s.services.Update(ctx, &models.Service{
		ID:          id,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		CategoryID:  categoryID,
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("Service not found")
	}
	s.invalidate(ctx, tagServices)

	return s.Get(ctx, id)
}

func (s *directoryService) Delete(ctx context.Context, id string) error {
	found, err := s.services.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFoundError("Service not found")
	}
	s.invalidate(ctx, tagServices)
	return nil
}

func (s *directoryService) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	categories, _, err := cache.Remember(ctx, s.cache, s.log, "service-categories:list", directoryTTL, []string{tagServiceCategories},
		s.services.ListCategories)
	return categories, err
}

func (s *directoryService) CreateCategory(ctx context.Context, req *models.ServiceCategoryRequest) (*models.ServiceCategory, error) {
	category := &models.ServiceCategory{ID: uuid.NewString(), Name: req.Name}
	if err := s.services.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tagServiceCategories)
	return category, nil
}

// resolveCategory returns nil when the category is absent or unknown
func (s *directoryService) resolveCategory(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	found, err := s.services.CategoryExists(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return id, nil
}

func (s *directoryService) invalidate(ctx context.Context, tag string) {
	if err := s.cache.Invalidate(ctx, tag); err != nil {
		s.log.Warn().Err(err).Str("tag", tag).Msg("Failed to invalidate cache")
	}
}
