package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

const defaultApprovalLimit = 50

// approvalService is the concrete implementation of ApprovalService
type approvalService struct {
	approvals repository.ApprovalRepository
	now       clock
	log       zerolog.Logger
}

func newApprovalService(approvals repository.ApprovalRepository, now clock, log zerolog.Logger) *approvalService {
	return &approvalService{
		approvals: approvals,
		now:       now,
		log:       log.With().Str("service", "approval").Logger(),
	}
}

// List is never cached; callers expect fresh conversion data
func (s *approvalService) List(ctx context.Context, params models.ListParams, filter models.ApprovalFilter) ([]models.Approval, int, error) {
	page := params.Resolve(defaultApprovalLimit)

	approvals, total, err := s.approvals.List(ctx, models.ApprovalQuery{Page: page, ApprovalFilter: filter})
	if err != nil {
		return nil, 0, err
	}
	return approvals, page.TotalPages(total), nil
}

func (s *approvalService) Ingest(ctx context.Context, batch *models.ApprovalBatch) (int, error) {
	now := s.now().UTC()
	approvals := make([]*models.Approval, len(batch.Approvals))
	for i, req := range batch.Approvals {
		approvals[i] = &models.Approval{
			ID:           uuid.NewString(),
			CampaignName: req.CampaignName,
			AdsetName:    req.AdsetName,
			AdName:       req.AdName,
			OfferID:      req.OfferID,
			Country:      req.Country,
			Revenue:      req.Revenue,
			SubID:        req.SubID,
			CreatedAt:    now,
		}
		if req.CreatedAt != nil {
			approvals[i].CreatedAt = req.CreatedAt.UTC()
		}
	}

	start := time.Now()
	inserted, err := s.approvals.BatchInsert(ctx, approvals)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Int("count", inserted).
		Dur("duration", time.Since(start)).
		Msg("Approvals ingested")
	return inserted, nil
}

// PreviousMonthWindow returns the first and last second of the calendar month
// before now, in now's location
func PreviousMonthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

func (s *approvalService) PurgePreviousMonth(ctx context.Context) (*models.PurgeResult, error) {
	from, to := PreviousMonthWindow(s.now())

	deleted, err := s.approvals.DeleteBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("deleted", deleted).
		Time("from", from).
		Time("to", to).
		Msg("Purged previous month approvals")

	return &models.PurgeResult{
		Message: fmt.Sprintf("Deleted %d approvals for %s - %s", deleted, from.Format("2006-01-02"), to.Format("2006-01-02")),
		Deleted: deleted,
		From:    from,
		To:      to,
	}, nil
}
