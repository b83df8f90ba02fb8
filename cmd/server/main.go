package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/app"
	"github.com/Brownie44l1/dermascan-api/internal/config"
	"github.com/Brownie44l1/dermascan-api/internal/handlers"
	"github.com/Brownie44l1/dermascan-api/internal/logging"
)

func getConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	execPath, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("Failed to get working directory: %v", err)
	}
	// If running from cmd/server, go up two levels
	if filepath.Base(execPath) == "server" {
		execPath = filepath.Join(execPath, "../..")
	}
	return filepath.Join(execPath, "config", "config.yaml")
}

func main() {
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("failed to load config from %s: %v", configPath, err)
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, false)
	if err != nil {
		log.Fatalf("Failed to initialize model server: %v", err)
	}
	defer a.Close()

	handler := handlers.NewHandler(a.Service, log)
	e := handlers.NewRouter(handler, handlers.RouterOptions{
		AllowOrigins: cfg.Server.AllowOrigins,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	log.WithField("address", cfg.Address()).Info("server starting")
	log.Info("Endpoints:")
	log.Info("  GET  /health        - Health check")
	log.Info("  GET  /classes       - Class names in prediction order")
	log.Info("  POST /predict       - Predict from base64 image JSON")
	log.Info("  POST /predict/image - Predict from image upload")
	log.Info("  GET  /history       - Recent predictions")

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}
