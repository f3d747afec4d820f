package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
	"github.com/klm-wiki-api/internal/validation"
	"github.com/rs/zerolog"
)

// ApprovalHandler handles /api/approvals
type ApprovalHandler struct {
	approvals service.ApprovalService
	log       zerolog.Logger
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvals service.ApprovalService, log zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		approvals: approvals,
		log:       log.With().Str("handler", "approval").Logger(),
	}
}

// dateFilter parses start_date and end_date from the query string
func dateFilter(c *gin.Context) (models.ApprovalFilter, bool) {
	filter, err := validation.ApprovalFilter(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		abortWithError(c, err)
		return filter, false
	}
	return filter, true
}

// List handles GET /api/approvals?page=&limit=&start_date=&end_date=.
// The page count goes in X-Total-Pages and the body is a plain array.
func (h *ApprovalHandler) List(c *gin.Context) {
	params, ok := bindListParams(c)
	if !ok {
		return
	}
	filter, ok := dateFilter(c)
	if !ok {
		return
	}

	approvals, totalPages, err := h.approvals.List(c.Request.Context(), params, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", cacheNoStore)
	c.Header(totalPagesHeader, strconv.Itoa(totalPages))
	c.JSON(http.StatusOK, approvals)
}

// Ingest handles POST /api/approvals. The body is either {"approvals": [...]}
// or a bare array.
func (h *ApprovalHandler) Ingest(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		abortWithError(c, validation.FromBindError(err))
		return
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		data = append(append([]byte(`{"approvals":`), trimmed...), '}')
	}

	var batch models.ApprovalBatch
	if err := binding.JSON.BindBody(data, &batch); err != nil {
		abortWithError(c, validation.FromBindError(err))
		return
	}

	inserted, err := h.approvals.Ingest(c.Request.Context(), &batch)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"inserted": inserted})
}

// PurgePreviousMonth handles DELETE /api/approvals/previous-month
func (h *ApprovalHandler) PurgePreviousMonth(c *gin.Context) {
	result, err := h.approvals.PurgePreviousMonth(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.log.Info().Int64("deleted", result.Deleted).Msg("Previous month approvals purged on request")
	c.JSON(http.StatusOK, result)
}
