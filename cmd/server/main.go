package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vidyarthi-platform/opportunity-hub/internal/api"
	"github.com/vidyarthi-platform/opportunity-hub/internal/config"
	"github.com/vidyarthi-platform/opportunity-hub/internal/db"
	"github.com/vidyarthi-platform/opportunity-hub/internal/logger"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	source, err := db.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to document store", zap.Error(err))
	}

	store := db.NewStore(source, log)
	cached := db.NewCachedStore(store, cfg.Cache.Size, cfg.CacheTTL())

	srv := api.NewServer(cached, log, cfg.HTTP)

	go func() {
		log.Info("Server starting", zap.Int("port", cfg.HTTP.Port), zap.String("env", env))
		if err := srv.Start(cfg.HTTP.Port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}
