package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/logger"
	"Gin_postgres_redis_inventory/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, app.ServiceName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer application.Close()

	if _, err := app.BootstrapAdmin(ctx, cfg.Bootstrap, application.Repo, log); err != nil {
		log.Error("bootstrap admin failed", zap.Error(err))
	}

	go application.RunSweeper(ctx)

	routes.RegisterRoutes(application.Router, application)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}
}
