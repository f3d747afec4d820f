package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klm-wiki-api/internal/api"
	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/klm-wiki-api/internal/service"
	"github.com/klm-wiki-api/internal/storage"
	"github.com/klm-wiki-api/internal/validation"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.log

	log.Info().Str("env", cfg.Env).Msg("Starting KLM wiki API server...")

	if cfg.Database.AutoMigrate {
		if err := a.db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	client := a.redisClient()
	if client != nil {
		defer client.Close()
	}

	store, err := cache.New(cfg.Cache, client)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := validation.Register(); err != nil {
		return err
	}

	repos := repository.New(a.db)
	services := service.NewServices(repos, store, storage.NewLocal(cfg.Uploads.Dir), cfg, log)

	infra := api.Infra{DB: a.db, Cache: store}
	if cfg.RateLimit.Enabled {
		infra.Limiter = api.NewLimiter(cfg.RateLimit, client, cfg.Cache.Prefix)
	}

	var handler http.Handler = api.NewRouter(services, infra, cfg, log)
	if cfg.Server.Compression {
		handler = gzhttp.GzipHandler(handler)
	}

	if err := services.Maintenance.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
		return err
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.Maintenance.Stop(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
