package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

// flushEvery bounds how many rows are buffered before the response is flushed
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamApprovals writes approvals matching filter in the given format
func (s *exportService) StreamApprovals(ctx context.Context, w http.ResponseWriter, format string, filter models.ApprovalFilter) error {
	s.log.Info().Str("format", format).Msg("Starting approvals export")

	switch format {
	case "ndjson":
		return s.streamApprovalsNDJSON(ctx, w, filter)
	case "csv":
		return s.streamApprovalsCSV(ctx, w, filter)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// startExport sets the download headers. It runs on the first row, or after an empty
// result, so a query that fails up front leaves the response untouched.
func startExport(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}

func (s *exportService) streamApprovalsNDJSON(ctx context.Context, w http.ResponseWriter, filter models.ApprovalFilter) error {
	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	count := 0

	err := s.repos.Approval.StreamAll(ctx, filter, func(approval *models.Approval) error {
		if count == 0 {
			startExport(w, "application/x-ndjson", "approvals.ndjson")
		}
		if err := encoder.Encode(approval); err != nil {
			return err
		}
		count++

		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		startExport(w, "application/x-ndjson", "approvals.ndjson")
		w.WriteHeader(http.StatusOK)
	}

	s.log.Info().Int("count", count).Msg("Approvals export completed")
	return nil
}

var approvalCSVHeader = []string{
	"id", "campaign_name", "adset_name", "ad_name", "offer_id", "country", "revenue", "sub_id", "created_at",
}

func (s *exportService) streamApprovalsCSV(ctx context.Context, w http.ResponseWriter, filter models.ApprovalFilter) error {
	writer := csv.NewWriter(w)
	count := 0

	err := s.repos.Approval.StreamAll(ctx, filter, func(a *models.Approval) error {
		if count == 0 {
			startExport(w, "text/csv", "approvals.csv")
			if err := writer.Write(approvalCSVHeader); err != nil {
				return err
			}
		}
		revenue := ""
		if a.Revenue != nil {
			revenue = strconv.FormatFloat(*a.Revenue, 'f', -1, 64)
		}
		count++
		if count%flushEvery == 0 {
			writer.Flush()
		}
		return writer.Write([]string{
			a.ID,
			a.CampaignName,
			deref(a.AdsetName),
			deref(a.AdName),
			deref(a.OfferID),
			deref(a.Country),
			revenue,
			a.SubID,
			a.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		// flush what was buffered before the failure
		if count > 0 {
			writer.Flush()
		}
		return err
	}

	if count == 0 {
		startExport(w, "text/csv", "approvals.csv")
		if err := writer.Write(approvalCSVHeader); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	s.log.Info().Int("count", count).Msg("Approvals export completed")
	return nil
}

// GetCount returns the row count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "articles":
		return s.repos.Article.Count(ctx)
	case "categories":
		return s.repos.Category.Count(ctx)
	case "comments":
		return s.repos.Comment.Count(ctx)
	case "users":
		return s.repos.User.Count(ctx)
	case "approvals":
		return s.repos.Approval.Count(ctx)
	case "services":
		return s.repos.Service.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
