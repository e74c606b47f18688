package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pricesignal/internal/config"
	"pricesignal/internal/evaluate"
	"pricesignal/internal/httpx"
	"pricesignal/internal/logging"
	"pricesignal/internal/provider/yahoo"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil { log.Fatal().Err(err).Msg("config") }
	logger := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	httpClient := httpx.New(time.Duration(cfg.Sources.TimeoutSec) * time.Second)
	httpClient.UserAgent = cfg.Sources.UserAgent

	svc, err := evaluate.FromConfig(cfg, httpClient)
	if err != nil { logger.Fatal().Err(err).Msg("sources") }

	s := &server{
		eval:    svc,
		stocks:  yahoo.New(yahoo.Config{Name: "yahoo", URL: cfg.Yahoo.Endpoint, UserAgent: cfg.Yahoo.UserAgent}, httpClient),
		log:     logger,
		timeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Server.Port).
			Str("game", cfg.Game.Endpoint).
			Str("real_provider", cfg.Real.Provider).
			Str("reference", cfg.Reference.CSVPath).
			Float64("default_threshold", cfg.Evaluate.DefaultThreshold).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
