package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdx-api/internal/app"
	"github.com/Brownie44l1/plantdx-api/internal/config"
	"github.com/Brownie44l1/plantdx-api/internal/handlers"
	"github.com/Brownie44l1/plantdx-api/internal/logger"
)

var configPath = flag.String("config", "", "path to the YAML config file (defaults and PLANTDX_* env vars otherwise)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	zapLogger.Infof(ctx, "Config loaded: %s, env: %s, model candidates: %v", cfg.App.Name, cfg.App.Env, cfg.Model.Candidates)

	a := app.New(cfg, zapLogger)
	defer a.Close()

	if cfg.Model.Preload {
		a.Preload(ctx)
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := handlers.NewHandler(a.Service, a.Loader, zapLogger, cfg.Server.MaxUploadBytes)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(handler, zapLogger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Infof(ctx, "Server starting on port %s", cfg.Server.Port)
		zapLogger.Infof(ctx, "Endpoints: GET /health, POST /api/v1/diagnose, POST /api/v1/predict, GET /api/v1/diseases, GET /api/v1/classes")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLogger.Infof(ctx, "Received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Errorf(ctx, "Graceful shutdown failed: %v", err)
	}
}
