// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-generation-service/internal/config"
	videoAdapters "video-generation-service/internal/infra/adapters/video"
	"video-generation-service/internal/infra/logging"
	"video-generation-service/internal/infra/metrics"
	red "video-generation-service/internal/infra/redis"
	"video-generation-service/internal/infra/web"
	"video-generation-service/internal/infra/worker"
	"video-generation-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	store := red.NewJobStore(redisClient, cfg.Redis.TTL)

	// ---- Provider adapter ----
	provider, err := videoAdapters.NewFromConfig(ctx, &cfg.Provider)
	if err != nil {
		logger.Fatal().Err(err).Msg("provider adapter")
	}
	logger.Info().Str("provider", provider.Name()).Str("model", provider.Model()).Msg("video provider ready")

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Worker pool + executor ----
	pool := worker.NewPool(cfg.Worker.Count, logger)
	pool.Start(ctx)
	processor := worker.NewGenerationProcessor(store, provider, cfg.Provider.PollInterval, cfg.Provider.MaxPollAttempts, logger)

	// ---- Use case + HTTP ----
	genUC := usecase.NewGenerationUseCase(store, provider, pool, processor, cfg.Provider.EstimatedSeconds, logger)
	srv := web.NewServer(genUC, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
}
