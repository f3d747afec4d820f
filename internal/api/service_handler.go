package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
)

// DirectoryHandler handles the useful services directory under /api/services
type DirectoryHandler struct {
	directory service.DirectoryService
}

func NewDirectoryHandler(directory service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// List handles GET /api/services?page=&limit=&search=
func (h *DirectoryHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}

	list, err := h.directory.List(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", cacheListLong)
	c.JSON(http.StatusOK, list)
}

func (h *DirectoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	svc, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *DirectoryHandler) Create(c *gin.Context) {
	var req models.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.directory.Create(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *DirectoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.directory.Update(c.Request.Context(), id, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *DirectoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.directory.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	deleted(c, "Service")
}

// ListCategories handles GET /api/services/service-categories
func (h *DirectoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.directory.ListCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", cacheListLong)
	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/services/service-categories
func (h *DirectoryHandler) CreateCategory(c *gin.Context) {
	var req models.ServiceCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.directory.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}
