package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/database/dbtest"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.New(dbtest.NewSQLite(t))
}

func strPtr(s string) *string { return &s }

func TestArticleRepo_UpsertCreatesThenUpdates(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	article := &models.Article{
		ID:        uuid.NewString(),
		Title:     "T",
		Content:   "C",
		Author:    "A",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	created, err := repos.Article.Upsert(ctx, article)
	require.NoError(t, err)
	assert.True(t, created)

	article.Title = "T2"
	created, err = repos.Article.Upsert(ctx, article)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repos.Article.GetByID(ctx, article.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "T2", stored.Title)
	assert.Equal(t, "C", stored.Content)
	assert.Nil(t, stored.CategoryID)
	assert.True(t, stored.CreatedAt.Equal(article.CreatedAt))

	n, err := repos.Article.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestArticleRepo_ListSearchAndPaging(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	titles := []string{"Go basics", "Rust basics", "Advanced Go"}
	for i, title := range titles {
		_, err := repos.Article.Upsert(ctx, &models.Article{
			ID: uuid.NewString(), Title: title, Content: "body", Author: "a",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	items, total, err := repos.Article.List(ctx, models.ArticleQuery{Page: models.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Advanced Go", items[0].Title)
	assert.Equal(t, "Rust basics", items[1].Title)

	items, total, err = repos.Article.List(ctx, models.ArticleQuery{Page: models.Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Go basics", items[0].Title)

	items, total, err = repos.Article.List(ctx, models.ArticleQuery{Page: models.Page{Page: 1, Limit: 10}, Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
}

func TestArticleRepo_SearchMatchesWildcardsLiterally(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	for _, title := range []string{"100% coverage", "snake_case names", "plain title", "bang! title"} {
		_, err := repos.Article.Upsert(ctx, &models.Article{
			ID: uuid.NewString(), Title: title, Content: "body", Author: "a", CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	tests := []struct {
		term string
		want []string
	}{
		{"%", []string{"100% coverage"}},
		{"_", []string{"snake_case names"}},
		{"!", []string{"bang! title"}},
		{"0%", []string{"100% coverage"}},
		{"e_c", []string{"snake_case names"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			items, total, err := repos.Article.List(ctx, models.ArticleQuery{Page: models.Page{Page: 1, Limit: 10}, Search: tt.term})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)

			titles := make([]string, len(items))
			for i, a := range items {
				titles[i] = a.Title
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestArticleRepo_UpdateDeleteMissing(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	found, err := repos.Article.Update(ctx, &models.Article{ID: uuid.NewString(), Title: "x", Content: "y", Author: "z"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repos.Article.Delete(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, found)

	article, err := repos.Article.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestCategoryRepo_DeleteNullsArticleCategory(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	category := &models.Category{ID: uuid.NewString(), Name: "News"}
	require.NoError(t, repos.Category.Create(ctx, category))

	article := &models.Article{
		ID: uuid.NewString(), Title: "t", Content: "c", Author: "a",
		CategoryID: strPtr(category.ID), CreatedAt: time.Now().UTC(),
	}
	_, err := repos.Article.Upsert(ctx, article)
	require.NoError(t, err)

	found, err := repos.Category.Delete(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, found)

	stored, err := repos.Article.GetByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
}

func TestCategoryRepo_ListOrderedByName(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, repos.Category.Create(ctx, &models.Category{ID: uuid.NewString(), Name: name}))
	}

	all, err := repos.Category.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Zeta", all[2].Name)

	page, err := repos.Category.List(ctx, &models.Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Zeta", page[0].Name)

	category := all[0]
	category.Name = "Beta"
	found, err := repos.Category.Update(ctx, &category)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCommentRepo_CreateListReplies(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	articleID := uuid.NewString()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	parent := &models.Comment{
		ID: uuid.NewString(), ArticleID: articleID, UserID: "u1", UserName: "Ann",
		Text: "first", Files: models.FileList{"/uploads/comments/a.png"}, CreatedAt: base,
	}
	require.NoError(t, repos.Comment.Create(ctx, parent))

	reply := &models.Comment{
		ID: uuid.NewString(), ArticleID: articleID, UserID: "u2", UserName: "Bob",
		Text: "reply", ParentID: strPtr(parent.ID), CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, repos.Comment.Create(ctx, reply))

	other := &models.Comment{
		ID: uuid.NewString(), ArticleID: uuid.NewString(), UserID: "u3", UserName: "Cid",
		Text: "elsewhere", CreatedAt: base.Add(2 * time.Minute),
	}
	require.NoError(t, repos.Comment.Create(ctx, other))

	list, err := repos.Comment.List(ctx, models.CommentQuery{Page: models.Page{Page: 1, Limit: 50}, ArticleID: articleID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, reply.ID, list[0].ID)
	assert.Equal(t, models.FileList{"/uploads/comments/a.png"}, list[1].Files)
	assert.Equal(t, models.FileList{}, list[0].Files)

	replies, err := repos.Comment.ListReplyIDs(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reply.ID}, replies)

	found, err := repos.Comment.Delete(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, found)

	// replies survive the parent
	stored, err := repos.Comment.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, parent.ID, *stored.ParentID)

	found, err = repos.Comment.Update(ctx, reply.ID, "Bobby", "edited")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestUserRepo_NeverSelectsPassword(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &models.User{
		ID: uuid.NewString(), Name: "Ann", Email: "ann@example.com",
		Password: "secret", Role: models.DefaultRole, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.User.Create(ctx, user))

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Password)
	assert.Equal(t, "user", stored.Role)

	found, err := repos.User.UpdateRole(ctx, user.ID, "admin")
	require.NoError(t, err)
	assert.True(t, found)

	users, err := repos.User.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Role)
	assert.Empty(t, users[0].Password)
}

func TestApprovalRepo_FilterAndDeleteBetween(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	batch := make([]*models.Approval, len(times))
	for i, ts := range times {
		batch[i] = &models.Approval{ID: uuid.NewString(), CampaignName: "c", SubID: "s", CreatedAt: ts}
	}
	inserted, err := repos.Approval.BatchInsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	list, total, err := repos.Approval.List(ctx, models.ApprovalQuery{
		Page:           models.Page{Page: 1, Limit: 50},
		ApprovalFilter: models.ApprovalFilter{From: &from},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, list, 4)

	to := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)
	deleted, err := repos.Approval.DeleteBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var streamed []string
	err = repos.Approval.StreamAll(ctx, models.ApprovalFilter{}, func(a *models.Approval) error {
		streamed = append(streamed, a.CreatedAt.UTC().Format("2006-01-02"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-31", "2024-03-01"}, streamed)
}

func TestServiceRepo_ListWithCategoryName(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	category := &models.ServiceCategory{ID: uuid.NewString(), Name: "Tools"}
	require.NoError(t, repos.Service.CreateCategory(ctx, category))

	ok, err := repos.Service.CategoryExists(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	svc := &models.Service{
		ID: uuid.NewString(), Title: "Linter", URL: "https://lint.example",
		Description: strPtr("checks code"), CategoryID: strPtr(category.ID), CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.Service.Create(ctx, svc))
	require.NoError(t, repos.Service.Create(ctx, &models.Service{
		ID: uuid.NewString(), Title: "Formatter", URL: "https://fmt.example", CreatedAt: time.Now().UTC(),
	}))

	list, total, err := repos.Service.List(ctx, models.ServiceQuery{Page: models.Page{Page: 1, Limit: 20}, Search: "lint"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].CategoryName)
	assert.Equal(t, "Tools", *list[0].CategoryName)

	categories, err := repos.Service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	svc.Title = "Linter Pro"
	found, err := repos.Service.Update(ctx, svc)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repos.Service.Delete(ctx, svc.ID)
	require.NoError(t, err)
	assert.True(t, found)

	stored, err := repos.Service.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
