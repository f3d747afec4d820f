package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/mocks"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	services *service.Services
	repos    *mocks.MockRepositories
	cache    *mocks.MockCache
	files    *mocks.MockFileStore
	cfg      *config.Config
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	repos, m := mocks.NewRepositories()
	store := mocks.NewMockCache()
	files := mocks.NewMockFileStore()
	cfg := config.Default()

	return &testHarness{
		services: service.NewServices(repos, store, files, cfg, zerolog.Nop()),
		repos:    m,
		cache:    store,
		files:    files,
		cfg:      cfg,
	}
}

func requireStatus(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func strPtr(s string) *string { return &s }

// --- Articles ---

func TestArticleService_SaveGeneratesID(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	article, created, err := h.services.Article.Save(ctx, &models.ArticleRequest{
		Title:      "Hello",
		Content:    `<p>Body</p><script>alert(1)</script>`,
		Author:     "Ann",
		CategoryID: strPtr(uuid.NewString()),
	})
	require.NoError(t, err)

	assert.True(t, created)
	_, err = uuid.Parse(article.ID)
	assert.NoError(t, err)
	assert.Equal(t, "<p>Body</p>", article.Content)
	assert.Nil(t, article.CategoryID, "unknown category should be dropped")
	assert.False(t, article.CreatedAt.IsZero())
	assert.Contains(t, h.cache.Invalidations, "articles")

	got, err := h.services.Article.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "Ann", got.Author)
}

func TestArticleService_SaveExistingIDUpdates(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	original := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	h.repos.Article.Articles["a1"] = &models.Article{ID: "a1", Title: "Old", CreatedAt: original}
	h.repos.Category.Categories["c1"] = &models.Category{ID: "c1", Name: "Go"}

	categoryID := "c1"
	article, created, err := h.services.Article.Save(ctx, &models.ArticleRequest{
		ID: "a1", Title: "New", Content: "x", Author: "Bob", CategoryID: &categoryID,
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, original, article.CreatedAt)
	assert.Equal(t, "New", h.repos.Article.Articles["a1"].Title)
	// "c1" is not a UUID, so it is dropped even though it exists
	assert.Nil(t, article.CategoryID)
}

func TestArticleService_KnownCategoryKept(t *testing.T) {
	h := newTestHarness(t)
	id := uuid.NewString()
	h.repos.Category.Categories[id] = &models.Category{ID: id, Name: "Go"}

	article, _, err := h.services.Article.Save(context.Background(), &models.ArticleRequest{
		Title: "T", Content: "C", Author: "A", CategoryID: &id,
	})
	require.NoError(t, err)
	require.NotNil(t, article.CategoryID)
	assert.Equal(t, id, *article.CategoryID)
}

func TestArticleService_NotFound(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.services.Article.Get(ctx, uuid.NewString())
	requireStatus(t, err, http.StatusNotFound)

	err = h.services.Article.Delete(ctx, uuid.NewString())
	requireStatus(t, err, http.StatusNotFound)

	_, err = h.services.Article.Update(ctx, uuid.NewString(), &models.ArticleRequest{Title: "T", Content: "C", Author: "A"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestArticleService_ListIsCached(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.repos.Article.Articles["a1"] = &models.Article{ID: "a1", Title: "One", CreatedAt: time.Now()}

	first, err := h.services.Article.List(ctx, models.ListParams{})
	require.NoError(t, err)
	second, err := h.services.Article.List(ctx, models.ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, h.repos.Article.ListCalls)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.Contains(t, h.cache.Entries, "articles:list:p=1:l=10:q=")

	_, _, err = h.services.Article.Save(ctx, &models.ArticleRequest{Title: "Two", Content: "C", Author: "A"})
	require.NoError(t, err)

	third, err := h.services.Article.List(ctx, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, h.repos.Article.ListCalls)
	assert.Equal(t, 2, third.Total)
}

func TestArticleService_ListSurvivesCacheOutage(t *testing.T) {
	h := newTestHarness(t)
	h.cache.Err = errors.New("redis down")
	h.repos.Article.Articles["a1"] = &models.Article{ID: "a1", Title: "One"}

	list, err := h.services.Article.List(context.Background(), models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, _, err = h.services.Article.Save(context.Background(), &models.ArticleRequest{Title: "T", Content: "C", Author: "A"})
	assert.NoError(t, err)
}

func TestArticleService_StoreErrorPropagates(t *testing.T) {
	h := newTestHarness(t)
	boom := errors.New("connection reset")
	h.repos.Article.Err = boom

	_, err := h.services.Article.List(context.Background(), models.ListParams{})
	assert.ErrorIs(t, err, boom)
}

// --- Categories ---

func TestCategoryService_CRUD(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	category, err := h.services.Category.Create(ctx, &models.CategoryRequest{Name: "News"})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)

	updated, err := h.services.Category.Update(ctx, category.ID, &models.CategoryRequest{Name: "Updates"})
	require.NoError(t, err)
	assert.Equal(t, "Updates", updated.Name)

	require.NoError(t, h.services.Category.Delete(ctx, category.ID))
	assert.Contains(t, h.cache.Invalidations, "articles")

	err = h.services.Category.Delete(ctx, category.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCategoryService_ListPagination(t *testing.T) {
	h := newTestHarness(t)
	for _, name := range []string{"a", "b", "c"} {
		h.repos.Category.Categories[name] = &models.Category{ID: name, Name: name}
	}

	all, err := h.services.Category.List(context.Background(), models.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, limit := 2, 2
	paged, err := h.services.Category.List(context.Background(), models.ListParams{Page: &page, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "c", paged[0].Name)
}

// --- Comments ---

func seedArticle(h *testHarness) string {
	id := uuid.NewString()
	h.repos.Article.Articles[id] = &models.Article{ID: id, Title: "T"}
	return id
}

func TestCommentService_UnknownArticle(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
		ArticleID: uuid.NewString(), UserID: "u1", UserName: "Ann", Text: "hi",
	}, []*multipart.FileHeader{{Filename: "a.png"}})

	httpErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "articleId", httpErr.Errors[0].Field)
	assert.Empty(t, h.files.Saved, "nothing is written for a rejected comment")
}

func TestCommentService_UnknownParent(t *testing.T) {
	h := newTestHarness(t)
	articleID := seedArticle(h)

	_, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
		ArticleID: articleID, UserID: "u1", UserName: "Ann", Text: "hi", ParentID: strPtr(uuid.NewString()),
	}, nil)

	httpErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "parentId", httpErr.Errors[0].Field)
}

func TestCommentService_CreateWithFiles(t *testing.T) {
	h := newTestHarness(t)
	articleID := seedArticle(h)

	comment, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
		ArticleID: articleID, UserID: "u1", UserName: "Ann", Text: "<b>nice</b> & clean",
	}, []*multipart.FileHeader{{Filename: "a.png"}, {Filename: "b.pdf"}})
	require.NoError(t, err)

	assert.Equal(t, "nice & clean", comment.Text)
	assert.Equal(t, models.FileList{"/uploads/comments/a.png", "/uploads/comments/b.pdf"}, comment.Files)
	assert.Contains(t, h.repos.Comment.Comments, comment.ID)
	assert.Contains(t, h.cache.Invalidations, "comments:article:"+articleID)
}

func TestCommentService_FileFailureCleansUp(t *testing.T) {
	h := newTestHarness(t)
	articleID := seedArticle(h)
	h.files.FailAfter = 1

	_, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
		ArticleID: articleID, UserID: "u1", UserName: "Ann", Text: "hi",
	}, []*multipart.FileHeader{{Filename: "a.png"}, {Filename: "b.png"}})
	require.Error(t, err)

	assert.Equal(t, []string{"/uploads/comments/a.png"}, h.files.Removed)
	assert.Empty(t, h.repos.Comment.Comments)
}

func TestCommentService_DeleteLeavesReplies(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	parentID := "p1"
	h.repos.Comment.Comments[parentID] = &models.Comment{ID: parentID, ArticleID: "a1", Files: models.FileList{"/uploads/comments/x.png"}}
	h.repos.Comment.Comments["r1"] = &models.Comment{ID: "r1", ArticleID: "a1", ParentID: &parentID}

	require.NoError(t, h.services.Comment.Delete(ctx, parentID))

	assert.NotContains(t, h.repos.Comment.Comments, parentID)
	assert.Contains(t, h.repos.Comment.Comments, "r1")
	assert.Equal(t, []string{"/uploads/comments/x.png"}, h.files.Removed)

	err := h.services.Comment.Delete(ctx, parentID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCommentService_ListCachedPerArticle(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	articleID := seedArticle(h)
	otherID := seedArticle(h)

	_, err := h.services.Comment.List(ctx, models.ListParams{}, articleID)
	require.NoError(t, err)
	_, err = h.services.Comment.List(ctx, models.ListParams{}, otherID)
	require.NoError(t, err)
	assert.Equal(t, 2, h.repos.Comment.ListCalls)

	_, err = h.services.Comment.Create(ctx, &models.CommentRequest{ArticleID: articleID, UserID: "u", UserName: "n", Text: "t"}, nil)
	require.NoError(t, err)

	comments, err := h.services.Comment.List(ctx, models.ListParams{}, articleID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	_, err = h.services.Comment.List(ctx, models.ListParams{}, otherID)
	require.NoError(t, err)

	// only the written article's listing was reloaded
	assert.Equal(t, 3, h.repos.Comment.ListCalls)
}

func TestCommentService_Update(t *testing.T) {
	h := newTestHarness(t)
	h.repos.Comment.Comments["c1"] = &models.Comment{ID: "c1", ArticleID: "a1", UserName: "Ann", Text: "old"}

	comment, err := h.services.Comment.Update(context.Background(), "c1", &models.CommentUpdateRequest{UserName: "Ann", Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", comment.Text)
	assert.Equal(t, "new", h.repos.Comment.Comments["c1"].Text)
}

func TestCommentService_TextSanitizing(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "a < b & c", "a < b & c"},
		{"markup", "<i>hi</i> there", "hi there"},
		{"encoded markup", "see &lt;b&gt;this&lt;/b&gt;", "see this"},
		{"double encoded", "&amp;lt;img src=x onerror=alert(1)&amp;gt;ok", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHarness(t)
			articleID := seedArticle(h)

			comment, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
				ArticleID: articleID, UserID: "u1", UserName: "Ann", Text: tt.text,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, comment.Text)
		})
	}
}

func TestCommentService_RejectsTextThatSanitizesToBlank(t *testing.T) {
	for _, text := range []string{
		"<script>alert(1)</script>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"<b> </b>",
	} {
		t.Run(text, func(t *testing.T) {
			h := newTestHarness(t)
			articleID := seedArticle(h)

			_, err := h.services.Comment.Create(context.Background(), &models.CommentRequest{
				ArticleID: articleID, UserID: "u1", UserName: "Ann", Text: text,
			}, []*multipart.FileHeader{{Filename: "a.png"}})

			httpErr := requireStatus(t, err, http.StatusBadRequest)
			require.Len(t, httpErr.Errors, 1)
			assert.Equal(t, "text", httpErr.Errors[0].Field)
			assert.Empty(t, h.repos.Comment.Comments)
			assert.Empty(t, h.files.Saved)
		})
	}
}

func TestCommentService_UpdateRejectsBlankAfterSanitizing(t *testing.T) {
	h := newTestHarness(t)
	h.repos.Comment.Comments["c1"] = &models.Comment{ID: "c1", ArticleID: "a1", UserName: "Ann", Text: "old"}

	_, err := h.services.Comment.Update(context.Background(), "c1", &models.CommentUpdateRequest{
		UserName: "<img src=x>", Text: "<script>x</script>",
	})

	httpErr := requireStatus(t, err, http.StatusBadRequest)
	require.Len(t, httpErr.Errors, 2)
	assert.ElementsMatch(t, []string{"userName", "text"}, []string{httpErr.Errors[0].Field, httpErr.Errors[1].Field})
	assert.Equal(t, "old", h.repos.Comment.Comments["c1"].Text)
}

// --- Users ---

func TestUserService_CreateDefaultsRole(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	user, err := h.services.User.Create(ctx, &models.UserRequest{Name: "Ann", Email: "ann@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, user.Role)
	assert.Equal(t, "secret", h.repos.User.Users[user.ID].Password)

	updated, err := h.services.User.UpdateRole(ctx, user.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Empty(t, updated.Password)

	_, err = h.services.User.UpdateRole(ctx, uuid.NewString(), "admin")
	requireStatus(t, err, http.StatusNotFound)
}

func TestUserService_Update(t *testing.T) {
	h := newTestHarness(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.repos.User.Users["u1"] = &models.User{ID: "u1", Name: "Ann", Role: "admin", CreatedAt: created}

	user, err := h.services.User.Update(context.Background(), "u1", &models.UserRequest{Name: "Anna", Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.Name)
	assert.Equal(t, models.DefaultRole, user.Role)
	assert.Equal(t, created, user.CreatedAt)
}

// --- Services directory ---

func TestDirectoryService_CreateResolvesCategory(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.repos.Service.Categories["sc1"] = &models.ServiceCategory{ID: "sc1", Name: "Tools"}

	known, err := h.services.Directory.Create(ctx, &models.ServiceRequest{Title: "Go", URL: "https://go.dev", CategoryID: strPtr("sc1")})
	require.NoError(t, err)
	require.NotNil(t, known.CategoryName)
	assert.Equal(t, "Tools", *known.CategoryName)

	unknown, err := h.services.Directory.Create(ctx, &models.ServiceRequest{Title: "Rust", URL: "https://rust-lang.org", CategoryID: strPtr(uuid.NewString())})
	require.NoError(t, err)
	assert.Nil(t, unknown.CategoryID)
	assert.Contains(t, h.cache.Invalidations, "services")
}

func TestDirectoryService_ListAndCategoriesCached(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	list, err := h.services.Directory.List(ctx, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.Contains(t, h.cache.Entries, "services:list:p=1:l=20:q=")

	_, err = h.services.Directory.ListCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, h.cache.Entries, "service-categories:list")

	_, err = h.services.Directory.CreateCategory(ctx, &models.ServiceCategoryRequest{Name: "AI"})
	require.NoError(t, err)
	assert.NotContains(t, h.cache.Entries, "service-categories:list")

	categories, err := h.services.Directory.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestDirectoryService_UpdateMissing(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.services.Directory.Update(context.Background(), uuid.NewString(), &models.ServiceRequest{Title: "x", URL: "https://x.io"})
	requireStatus(t, err, http.StatusNotFound)
}

// --- Approvals ---

func TestPreviousMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "leap february",
			now:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "january wraps to december",
			now:       time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
			wantStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "thirty-one day month start",
			now:       time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := service.PreviousMonthWindow(tt.now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestApprovalService_PurgePreviousMonth(t *testing.T) {
	h := newTestHarness(t)
	from, _ := service.PreviousMonthWindow(time.Now())
	h.repos.Approval.Approvals = []*models.Approval{
		{ID: "in", CreatedAt: from.Add(time.Hour)},
		{ID: "out", CreatedAt: from.AddDate(0, -1, 0)},
	}

	result, err := h.services.Approval.PurgePreviousMonth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Deleted)
	assert.Equal(t, h.repos.Approval.DeletedFrom, result.From)
	assert.Equal(t, 1, result.From.Day())
	assert.Contains(t, result.Message, "Deleted 1 approvals")
	require.Len(t, h.repos.Approval.Approvals, 1)
	assert.Equal(t, "out", h.repos.Approval.Approvals[0].ID)
}

func TestApprovalService_ListTotalPages(t *testing.T) {
	h := newTestHarness(t)
	now := time.Now()
	for i := 0; i < 120; i++ {
		h.repos.Approval.Approvals = append(h.repos.Approval.Approvals, &models.Approval{ID: uuid.NewString(), CreatedAt: now.Add(-time.Duration(i) * time.Minute)})
	}

	approvals, totalPages, err := h.services.Approval.List(context.Background(), models.ListParams{}, models.ApprovalFilter{})
	require.NoError(t, err)
	assert.Len(t, approvals, 50)
	assert.Equal(t, 3, totalPages)
	assert.Equal(t, 50, h.repos.Approval.LastQuery.Limit)
}

func TestApprovalService_Ingest(t *testing.T) {
	h := newTestHarness(t)
	at := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	n, err := h.services.Approval.Ingest(context.Background(), &models.ApprovalBatch{Approvals: []models.ApprovalRequest{
		{CampaignName: "spring", SubID: "s1"},
		{CampaignName: "spring", SubID: "s2", CreatedAt: &at},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	require.Len(t, h.repos.Approval.Approvals, 2)
	assert.NotEmpty(t, h.repos.Approval.Approvals[0].ID)
	assert.Equal(t, at, h.repos.Approval.Approvals[1].CreatedAt)
}

// --- Export ---

func seedExportApprovals(h *testHarness) {
	revenue := 12.5
	country := "DE"
	h.repos.Approval.Approvals = []*models.Approval{
		{ID: "a1", CampaignName: "spring", SubID: "s1", Revenue: &revenue, Country: &country, CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "a2", CampaignName: "summer, hot", SubID: "s2", CreatedAt: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)},
	}
}

func TestExportService_StreamApprovalsCSV(t *testing.T) {
	h := newTestHarness(t)
	seedExportApprovals(h)
	rec := httptest.NewRecorder()

	err := h.services.Export.StreamApprovals(context.Background(), rec, "csv", models.ApprovalFilter{})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,campaign_name,adset_name,ad_name,offer_id,country,revenue,sub_id,created_at", lines[0])
	assert.Equal(t, "a1,spring,,,,DE,12.5,s1,2024-02-01T09:00:00Z", lines[1])
	assert.Equal(t, `a2,"summer, hot",,,,,,s2,2024-02-02T09:00:00Z`, lines[2])
}

func TestExportService_StreamApprovalsNDJSONFiltered(t *testing.T) {
	h := newTestHarness(t)
	seedExportApprovals(h)
	rec := httptest.NewRecorder()
	from := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	err := h.services.Export.StreamApprovals(context.Background(), rec, "ndjson", models.ApprovalFilter{From: &from})
	require.NoError(t, err)

	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 1)

	var approval models.Approval
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &approval))
	assert.Equal(t, "a2", approval.ID)
}

func TestExportService_StoreFailureLeavesResponseUntouched(t *testing.T) {
	for _, format := range []string{"csv", "ndjson"} {
		t.Run(format, func(t *testing.T) {
			h := newTestHarness(t)
			seedExportApprovals(h)
			h.repos.Approval.Err = errors.New("connection refused")
			rec := httptest.NewRecorder()

			err := h.services.Export.StreamApprovals(context.Background(), rec, format, models.ApprovalFilter{})

			require.Error(t, err)
			assert.Empty(t, rec.Header().Get("Content-Type"))
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
			assert.Zero(t, rec.Body.Len())
			assert.False(t, rec.Flushed)
		})
	}
}

func TestExportService_EmptyResult(t *testing.T) {
	h := newTestHarness(t)

	rec := httptest.NewRecorder()
	require.NoError(t, h.services.Export.StreamApprovals(context.Background(), rec, "csv", models.ApprovalFilter{}))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "id,campaign_name,adset_name,ad_name,offer_id,country,revenue,sub_id,created_at\n", rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, h.services.Export.StreamApprovals(context.Background(), rec, "ndjson", models.ApprovalFilter{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	h := newTestHarness(t)

	err := h.services.Export.StreamApprovals(context.Background(), httptest.NewRecorder(), "xml", models.ApprovalFilter{})
	assert.Error(t, err)
}

func TestExportService_GetCount(t *testing.T) {
	h := newTestHarness(t)
	seedArticle(h)
	seedArticle(h)

	n, err := h.services.Export.GetCount(context.Background(), "articles")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = h.services.Export.GetCount(context.Background(), "jobs")
	assert.Error(t, err)
}

// --- Maintenance ---

func TestMaintenanceService_StartStop(t *testing.T) {
	repos, _ := mocks.NewRepositories()
	cfg := config.Default()
	cfg.Maintenance.Enabled = false
	cfg.Maintenance.ApprovalsSchedule = "not a schedule"

	svc := service.NewServices(repos, mocks.NewMockCache(), mocks.NewMockFileStore(), cfg, zerolog.Nop())
	// disabled maintenance never parses the schedule
	assert.NoError(t, svc.Maintenance.Start())
	svc.Maintenance.Stop(context.Background())
}

func TestMaintenanceService_InvalidSchedule(t *testing.T) {
	repos, _ := mocks.NewRepositories()
	cfg := config.Default()
	cfg.Maintenance.Enabled = true
	cfg.Maintenance.ApprovalsSchedule = "every tuesday"

	svc := service.NewServices(repos, mocks.NewMockCache(), mocks.NewMockFileStore(), cfg, zerolog.Nop())
	assert.Error(t, svc.Maintenance.Start())

	cfg.Maintenance.ApprovalsSchedule = "0 3 1 * *"
	svc = service.NewServices(repos, mocks.NewMockCache(), mocks.NewMockFileStore(), cfg, zerolog.Nop())
	require.NoError(t, svc.Maintenance.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc.Maintenance.Stop(ctx)
}
