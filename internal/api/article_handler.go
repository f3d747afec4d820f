package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
)

// ArticleHandler handles /api/articles
type ArticleHandler struct {
	articles service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// List handles GET /api/articles?page=&limit=&q=
func (h *ArticleHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	list, err := h.articles.List(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", cacheListShort)
	c.JSON(http.StatusOK, list)
}

// Get handles GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Create handles POST /api/articles. A body id naming an existing article
// overwrites it and answers 200 instead of 201.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, created, err := h.articles.Save(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, article)
}

// Update handles PUT /api/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articles.Update(c.Request.Context(), id, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	deleted(c, "Article")
}
