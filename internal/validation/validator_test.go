package validation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Configure(v))
	return v
}

func fields(e *errs.HTTPError) map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, f := range e.Errors {
		out[f.Field] = f.Error
	}
	return out
}

func TestFromBindError_ArticleRequest(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		req        models.ArticleRequest
		wantFields map[string]string
	}{
		{
			name:       "valid article",
			req:        models.ArticleRequest{Title: "Go", Content: "<p>hi</p>", Author: "Ann"},
			wantFields: nil,
		},
		{
			name: "missing required fields",
			req:  models.ArticleRequest{},
			wantFields: map[string]string{
				"title":   "is required",
				"content": "is required",
				"author":  "is required",
			},
		},
		{
			name:       "blank title",
			req:        models.ArticleRequest{Title: "   ", Content: "x", Author: "Ann"},
			wantFields: map[string]string{"title": "must not be blank"},
		},
		{
			name:       "malformed id",
			req:        models.ArticleRequest{ID: "42", Title: "Go", Content: "x", Author: "Ann"},
			wantFields: map[string]string{"id": "must be a valid UUID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			httpErr := FromBindError(err)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, "BAD_REQUEST", httpErr.Code)
			assert.Equal(t, tt.wantFields, fields(httpErr))
		})
	}
}

func TestFromBindError_NestedBatch(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(models.ApprovalBatch{Approvals: []models.ApprovalRequest{
		{CampaignName: "spring", SubID: "a1"},
		{CampaignName: "spring"},
	}})
	require.Error(t, err)

	assert.Equal(t, map[string]string{"approvals[1].sub_id": "is required"}, fields(FromBindError(err)))

	err = v.Struct(models.ApprovalBatch{Approvals: []models.ApprovalRequest{}})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"approvals": "must contain at least 1 items"}, fields(FromBindError(err)))
}

func TestFromBindError_ListParams(t *testing.T) {
	v := newValidator(t)
	zero, big := 0, 101

	err := v.Struct(models.ListParams{Page: &zero, Limit: &big})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"page":  "must be at least 1",
		"limit": "must not exceed 100",
	}, fields(FromBindError(err)))
}

func TestFromBindError_DecodeErrors(t *testing.T) {
	var target models.ArticleRequest

	err := json.Unmarshal([]byte(`{"title": 5}`), &target)
	got := FromBindError(err)
	assert.Equal(t, "Invalid request body", got.Message)
	assert.Equal(t, "title", got.Errors[0].Field)

	err = json.Unmarshal([]byte(`{"title":`), &target)
	assert.Equal(t, "Malformed JSON body", FromBindError(err).Message)

	_, err = strconv.Atoi("abc")
	assert.Equal(t, "Invalid query parameters", FromBindError(err).Message)
}

func TestID(t *testing.T) {
	assert.NoError(t, ID("id", "550e8400-e29b-41d4-a716-446655440000"))

	err := ID("id", "abc")
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "id", httpErr.Errors[0].Field)
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("", false)
	assert.True(t, ok)
	assert.Nil(t, got)

	got, ok = ParseDate("2024-02-01", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *got)

	got, ok = ParseDate("2024-02-29", true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), *got)

	got, ok = ParseDate("2024-02-01T10:30:00+03:00", true)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 2, 1, 7, 30, 0, 0, time.UTC)))

	// zoneless timestamps are read in the server's zone and ignore endOfDay
	got, ok = ParseDate("2024-02-01T10:30:00", true)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 2, 1, 10, 30, 0, 0, time.Local)))

	_, ok = ParseDate("2024-02-01T25:30:00", false)
	assert.False(t, ok)

	_, ok = ParseDate("01/02/2024", false)
	assert.False(t, ok)
}

func TestApprovalFilter(t *testing.T) {
	filter, err := ApprovalFilter("2024-01-01", "")
	require.NoError(t, err)
	assert.NotNil(t, filter.From)
	assert.Nil(t, filter.To)

	_, err = ApprovalFilter("yesterday", "soon")
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Len(t, httpErr.Errors, 2)

	_, err = ApprovalFilter("2024-03-01", "2024-02-01")
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "end_date", httpErr.Errors[0].Field)
}
