package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/klm-wiki-api/internal/validation"
	"github.com/rs/zerolog"
)

const defaultArticleLimit = 10

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	cache      cache.Store
	now        clock
	log        zerolog.Logger
}

func newArticleService(articles repository.ArticleRepository, categories repository.CategoryRepository, store cache.Store, now clock, log zerolog.Logger) *articleService {
	return &articleService{
		articles:   articles,
		categories: categories,
		cache:      store,
		now:        now,
		log:        log.With().Str("service", "article").Logger(),
	}
}

func (s *articleService) List(ctx context.Context, params models.ListParams) (*models.ArticleList, error) {
	page := params.Resolve(defaultArticleLimit)
	term := params.Term()
	key := listKey("articles", page, "q="+term)

	list, _, err := cache.Remember(ctx, s.cache, s.log, key, listTTL, []string{tagArticles},
		func(ctx context.Context) (*models.ArticleList, error) {
			items, total, err := s.articles.List(ctx, models.ArticleQuery{Page: page, Search: term})
			if err != nil {
				return nil, err
			}
			return &models.ArticleList{Items: items, Total: total}, nil
		})
	return list, err
}

func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, errs.NewNotFoundError("Article not found")
	}
	return article, nil
}

func (s *articleService) Save(ctx context.Context, req *models.ArticleRequest) (*models.Article, bool, error) {
	article, err := s.build(ctx, req)
	if err != nil {
		return nil, false, err
	}

	if req.ID == "" {
		article.ID = uuid.NewString()
	} else {
		article.ID = req.ID
		// an overwrite without createdAt keeps the stored timestamp
		if req.CreatedAt == nil {
			existing, err := s.articles.GetByID(ctx, req.ID)
			if err != nil {
				return nil, false, err
			}
			if existing != nil {
				article.CreatedAt = existing.CreatedAt
			}
		}
	}

	created, err := s.articles.Upsert(ctx, article)
	if err != nil {
		return nil, false, err
	}
	s.invalidate(ctx)

	s.log.Info().Str("article_id", article.ID).Bool("created", created).Msg("Article saved")
	return article, created, nil
}

func (s *articleService) Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	article, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	article.ID = id
	if req.CreatedAt == nil {
		article.CreatedAt = existing.CreatedAt
	}

	found, err := s.articles.Update(ctx, article)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("Article not found")
	}
	s.invalidate(ctx)

	return article, nil
}

func (s *articleService) Delete(ctx context.Context, id string) error {
	found, err := s.articles.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFoundError("Article not found")
	}
	s.invalidate(ctx)
	return nil
}

// build maps the request onto a new article without an id
func (s *articleService) build(ctx context.Context, req *models.ArticleRequest) (*models.Article, error) {
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:      req.Title,
		Content:    sanitizeContent(req.Content),
		CategoryID: categoryID,
		Author:     req.Author,
		Image:      req.Image,
		CreatedAt:  s.now().UTC(),
	}
	if req.CreatedAt != nil {
		article.CreatedAt = req.CreatedAt.UTC()
	}
	return article, nil
}

// resolveCategory returns nil for a missing, malformed or unknown category
func (s *articleService) resolveCategory(ctx context.Context, id *string) (*string, error) {
	if id == nil || !validation.IsUUID(*id) {
		return nil, nil
	}
	found, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !found {
		s.log.Debug().Str("category_id", *id).Msg("Dropping unknown category")
		return nil, nil
	}
	return id, nil
}

func (s *articleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, tagArticles); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate article cache")
	}
}
