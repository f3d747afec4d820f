//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/internal/database/dbtest"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a container and returns a config pointing at it
func setupPostgres(t *testing.T) config.DatabaseConfig {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("klm_wiki"),
		postgres.WithUsername("klm"),
		postgres.WithPassword("klm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.Default().Database
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.User = "klm"
	cfg.Password = "klm"
	cfg.Name = "klm_wiki"
	cfg.MigrationsPath = dbtest.MigrationsPath()
	return cfg
}

func TestPostgres_Drivers(t *testing.T) {
	base := setupPostgres(t)

	// both drivers share one schema; the second migration run is a no-op
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			cfg := base
			cfg.Driver = driver

			db, err := database.New(&cfg, zerolog.Nop())
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.RunMigrations(cfg.MigrationsPath))
			version, dirty, err := db.MigrationVersion(cfg.MigrationsPath)
			require.NoError(t, err)
			assert.False(t, dirty)
			assert.Equal(t, uint(1), version)

			exercisePostgres(t, repository.New(db))
		})
	}
}

func exercisePostgres(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()

	category := &models.Category{ID: uuid.NewString(), Name: "Guides " + uuid.NewString()[:8]}
	require.NoError(t, repos.Category.Create(ctx, category))

	article := &models.Article{
		ID:         uuid.NewString(),
		Title:      "Postgres article",
		Content:    "<p>body</p>",
		Author:     "Ann",
		CategoryID: &category.ID,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	created, err := repos.Article.Upsert(ctx, article)
	require.NoError(t, err)
	assert.True(t, created)

	article.Title = "Postgres article v2"
	created, err = repos.Article.Upsert(ctx, article)
	require.NoError(t, err)
	assert.False(t, created)

	list, total, err := repos.Article.List(ctx, models.ArticleQuery{
		Page:   models.Page{Page: 1, Limit: 10},
		Search: "v2",
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	require.NotEmpty(t, list)

	comment := &models.Comment{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		UserID:    "u1",
		UserName:  "Ann",
		Text:      "first",
		Files:     models.FileList{"/uploads/comments/a.png"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.Comment.Create(ctx, comment))
	stored, err := repos.Comment.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, comment.Files, stored.Files)

	// deleting the category nulls the article's reference
	deleted, err := repos.Category.Delete(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	reloaded, err := repos.Article.GetByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)

	campaign := "pg-" + uuid.NewString()[:8]
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	batch := []*models.Approval{
		{ID: uuid.NewString(), CampaignName: campaign, SubID: "s1", CreatedAt: feb},
		{ID: uuid.NewString(), CampaignName: campaign, SubID: "s2", CreatedAt: feb.AddDate(0, 1, 0)},
	}
	inserted, err := repos.Approval.BatchInsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	n, err := repos.Approval.DeleteBetween(ctx,
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
