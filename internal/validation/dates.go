package validation

import (
	"time"

	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
)

const (
	dateOnly  = "2006-01-02"
	localTime = "2006-01-02T15:04:05"
)

// ParseDate accepts an RFC 3339 timestamp, a zoneless timestamp in the server's
// local zone, or a YYYY-MM-DD date. Date-only values are midnight UTC, or the
// last second of that day when endOfDay is set. An empty value yields nil.
func ParseDate(value string, endOfDay bool) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, true
	}
	if t, err := time.ParseInLocation(localTime, value, time.Local); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}

// ApprovalFilter reads the start_date / end_date bounds. Each bound is optional.
func ApprovalFilter(startDate, endDate string) (models.ApprovalFilter, error) {
	var (
		filter models.ApprovalFilter
		fields []errs.FieldError
		ok     bool
	)

	if filter.From, ok = ParseDate(startDate, false); !ok {
		fields = append(fields, errs.FieldError{Field: "start_date", Error: "must be an ISO 8601 date or timestamp"})
	}
	if filter.To, ok = ParseDate(endDate, true); !ok {
		fields = append(fields, errs.FieldError{Field: "end_date", Error: "must be an ISO 8601 date or timestamp"})
	}
	if len(fields) > 0 {
		return models.ApprovalFilter{}, errs.NewBadRequestError("Validation failed", fields)
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return models.ApprovalFilter{}, errs.NewValidationError("end_date", "must not be before start_date")
	}
	return filter, nil
}
