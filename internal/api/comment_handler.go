package api

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
	"github.com/klm-wiki-api/internal/validation"
	"github.com/rs/zerolog"
)

// CommentHandler handles /api/comments
type CommentHandler struct {
	comments service.CommentService
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments service.CommentService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// List handles GET /api/comments?articleId=&page=&limit=
func (h *CommentHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	articleID := c.Query("articleId")
	if articleID != "" {
		if err := validation.ID("articleId", articleID); err != nil {
			abortWithError(c, err)
			return
		}
	}

	comments, err := h.comments.List(c.Request.Context(), params, articleID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", cacheListShort)
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create handles POST /api/comments as JSON or multipart/form-data. Files in
// the multipart case were already checked by uploadGuard.
func (h *CommentHandler) Create(c *gin.Context) {
	var (
		req   models.CommentRequest
		files []*multipart.FileHeader
	)

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			abortWithError(c, validation.FromBindError(err))
			return
		}
		if form := c.Request.MultipartForm; form != nil {
			files = form.File[uploadField]
		}
	} else if !bindJSON(c, &req) {
		return
	}

	h.log.Debug().Str("article_id", req.ArticleID).Int("files", len(files)).Msg("Creating comment")
	comment, err := h.comments.Create(c.Request.Context(), &req, files)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update handles PUT /api/comments/:id; only userName and text change
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.CommentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	deleted(c, "Comment")
}
