package main

import (
	"fmt"
	"os"

	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/database"
	"github.com/klm-wiki-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds what every command needs before it does its own work
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *database.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close database")
	}
}

// redisClient returns nil when no Redis address is configured
func (a *app) redisClient() *redis.Client {
	if a.cfg.Redis.Address == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
}
