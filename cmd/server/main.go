package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/api"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/app"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/config"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/httpclient"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/limiter"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/export"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/gemini"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/voice"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/session"
)

func main() {
	// Optional .env for local development; real deployments use the
	// process environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	// A missing credential is surfaced to the user on first use, not a
	// crash; the server still boots so the UI can explain the problem.
	if err := cfg.Validate(); err != nil {
		zapLogger.Warn("configuration incomplete", "error", err)
	}

	httpClient := httpclient.New(httpclient.Options{
		Timeout:    time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.HTTPClient.MaxRetries,
	})

	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)

	geminiSvc := gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.ChatModel, httpClient, zapLogger)
	exportSvc := export.New(cfg.Export.BasePath, cfg.Export.BaseURL, zapLogger)
	voiceDial := voice.GeminiDialer(cfg.Gemini.APIKey, cfg.Gemini.VoiceModel)

	registry := session.NewRegistry(func() *app.Controller {
		return app.NewController(geminiSvc, lim, zapLogger)
	})

	handler := api.NewHandler(registry, geminiSvc, exportSvc, voiceDial, zapLogger)
	router := api.NewRouter(handler, zapLogger, api.RouterOptions{
		FilesURL:  cfg.Export.BaseURL,
		FilesPath: cfg.Export.BasePath,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry.CloseAll()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
