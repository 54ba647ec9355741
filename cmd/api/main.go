package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"blog-api/api/router"
	"blog-api/config"
	"blog-api/db"
	"blog-api/internal/logger"
	"blog-api/repositories"
	"blog-api/services"
)

// @title           Blog API
// @version         1.0
// @description     CRUD API for blog posts with search, pagination and unique slugs
// @BasePath        /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	logger.InfoWithFields("connected to MongoDB", logger.Fields{
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
	})

	postSvc := services.NewPostService(repositories.NewPostRepository(d.Posts()))
	r := router.New(postSvc, router.Options{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		Static:       cfg.Static,
		Health:       d,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.WithCORS(r, cfg.CORS.AllowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoWithFields("api server listening", logger.Fields{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("api server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("graceful shutdown failed: %v", err)
	}
	if err := d.Close(shutdownCtx); err != nil {
		logger.Log.Errorf("failed to disconnect MongoDB: %v", err)
	}
	logger.Log.Info("api server stopped")
}
