package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	defaultCommentLimit = 50
	commentFilesFolder  = "comments"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	cache    cache.Store
	files    FileStore
	now      clock
	log      zerolog.Logger
}

func newCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, store cache.Store, files FileStore, now clock, log zerolog.Logger) *commentService {
	return &commentService{
		comments: comments,
		articles: articles,
		cache:    store,
		files:    files,
		now:      now,
		log:      log.With().Str("service", "comment").Logger(),
	}
}

func (s *commentService) List(ctx context.Context, params models.ListParams, articleID string) ([]models.Comment, error) {
	page := params.Resolve(defaultCommentLimit)

	tag := tagComments
	if articleID != "" {
		tag = articleCommentsTag(articleID)
	}
	key := listKey("comments", page, "a="+articleID)

	comments, _, err := cache.Remember(ctx, s.cache, s.log, key, listTTL, []string{tag},
		func(ctx context.Context) ([]models.Comment, error) {
			return s.comments.List(ctx, models.CommentQuery{Page: page, ArticleID: articleID})
		})
	return comments, err
}

func (s *commentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errs.NewNotFoundError("Comment not found")
	}
	return comment, nil
}

// sanitizedFields strips markup from the author name and text and rejects either
// when nothing readable is left
func sanitizedFields(userName, text string) (string, string, error) {
	userName, text = sanitizeText(userName), sanitizeText(text)

	var fields []errs.FieldError
	if userName == "" {
		fields = append(fields, errs.FieldError{Field: "userName", Error: "must not be blank"})
	}
	if text == "" {
		fields = append(fields, errs.FieldError{Field: "text", Error: "must not be blank"})
	}
	if len(fields) > 0 {
		return "", "", errs.NewBadRequestError("Validation failed", fields)
	}
	return userName, text, nil
}

// Create checks the references before any attachment touches the disk
func (s *commentService) Create(ctx context.Context, req *models.CommentRequest, files []*multipart.FileHeader) (*models.Comment, error) {
	userName, text, err := sanitizedFields(req.UserName, req.Text)
	if err != nil {
		return nil, err
	}

	found, err := s.articles.Exists(ctx, req.ArticleID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewValidationError("articleId", "referenced article does not exist")
	}

	if req.ParentID != nil {
		found, err := s.comments.Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errs.NewValidationError("parentId", "referenced comment does not exist")
		}
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		ArticleID: req.ArticleID,
		UserID:    req.UserID,
		UserName:  userName,
		Text:      text,
		ParentID:  req.ParentID,
		Files:     models.FileList{},
		CreatedAt: s.now().UTC(),
	}

	for _, fh := range files {
		url, err := s.files.Save(ctx, commentFilesFolder, fh)
		if err != nil {
			s.removeFiles(ctx, comment.Files)
			return nil, err
		}
		comment.Files = append(comment.Files, url)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.removeFiles(ctx, comment.Files)
		return nil, err
	}
	s.invalidate(ctx, comment.ArticleID)

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", comment.ArticleID).
		Int("files", len(comment.Files)).
		Msg("Comment created")
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, id string, req *models.CommentUpdateRequest) (*models.Comment, error) {
	userName, text, err := sanitizedFields(req.UserName, req.Text)
	if err != nil {
		return nil, err
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	comment.UserName = userName
	comment.Text = text

	found, err := s.comments.Update(ctx, id, comment.UserName, comment.Text)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("Comment not found")
	}
	s.invalidate(ctx, comment.ArticleID)

	return comment, nil
}

// Delete removes one comment and its attachments. Replies are left in place.
func (s *commentService) Delete(ctx context.Context, id string) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	replies, err := s.comments.ListReplyIDs(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.comments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFoundError("Comment not found")
	}

	if len(replies) > 0 {
		s.log.Info().Str("comment_id", id).Int("orphaned_replies", len(replies)).Msg("Deleted comment with replies")
	}
	s.removeFiles(ctx, comment.Files)
	s.invalidate(ctx, comment.ArticleID)
	return nil
}

// removeFiles is best effort; failures are logged
func (s *commentService) removeFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.files.Remove(ctx, url); err != nil {
			s.log.Warn().Err(err).Str("file", url).Msg("Failed to remove attachment")
		}
	}
}

func (s *commentService) invalidate(ctx context.Context, articleID string) {
	if err := s.cache.Invalidate(ctx, tagComments, articleCommentsTag(articleID)); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate comment cache")
	}
}
