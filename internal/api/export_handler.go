package api

import (
	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler streams approval exports
type ExportHandler struct {
	export service.ExportService
	log    zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(export service.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		export: export,
		log:    log.With().Str("handler", "export").Logger(),
	}
}

// StreamApprovals handles GET /api/approvals/export?format=&start_date=&end_date=.
// Rows are written as they are read, so failures after the first byte can
// only be logged.
func (h *ExportHandler) StreamApprovals(c *gin.Context) {
	format := c.DefaultQuery("format", "ndjson")
	if format != "ndjson" && format != "csv" {
		abortWithError(c, errs.NewValidationError("format", "must be one of: csv ndjson"))
		return
	}
	filter, ok := dateFilter(c)
	if !ok {
		return
	}

	h.log.Info().Str("format", format).Msg("Starting approvals export")

	c.Header("Cache-Control", cacheNoStore)
	if err := h.export.StreamApprovals(c.Request.Context(), c.Writer, format, filter); err != nil {
		if !c.Writer.Written() {
			abortWithError(c, err)
			return
		}
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("Export aborted mid-stream")
	}
}
