package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/validation"
)

const (
	totalPagesHeader = "X-Total-Pages"

	cacheListShort = "public, max-age=60"
	cacheListLong  = "public, max-age=300"
	cacheNoStore   = "no-store"
)

// bindJSON decodes and validates the body into req; on failure the error is
// attached and false returned
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, validation.FromBindError(err))
		return false
	}
	return true
}

// bindListParams reads page, limit and q/search from the query string
func bindListParams(c *gin.Context) (models.ListParams, bool) {
	var params models.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, validation.FromBindError(err))
		return params, false
	}
	return params, true
}

// pathID returns the :id path parameter when it is a UUID
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := validation.ID("id", id); err != nil {
		abortWithError(c, err)
		return "", false
	}
	return id, true
}

// deleted answers a successful delete with 200 and a message body
func deleted(c *gin.Context, resource string) {
	c.JSON(http.StatusOK, gin.H{"message": resource + " deleted"})
}
