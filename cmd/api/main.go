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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cfp-backend/internal/cache"
	"cfp-backend/internal/config"
	httpinterface "cfp-backend/internal/interfaces/http"
	"cfp-backend/internal/interfaces/http/handlers"
	"cfp-backend/internal/llm"
	"cfp-backend/internal/observability"
	"cfp-backend/internal/service/discovery"
	"cfp-backend/internal/service/funding"
	"cfp-backend/internal/service/proposal"
)

const version = "1.2.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	// Best effort; the file is only present in local development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	collector := observability.NewCollector("cfp")

	proposalStore := cache.NewStore(cache.Config{MaxEntries: cfg.Cache.MaxEntries})
	eventStore := cache.NewStore(cache.Config{MaxEntries: cfg.Cache.MaxEntries})

	var provider llm.Provider
	if inner := llm.NewOpenAIProvider(cfg.LLM); inner != nil {
		provider = llm.NewBreakerProvider(inner, llm.DefaultBreakerConfig("openai"), logger)
		logger.Info("model-backed generation enabled", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Info("no API key configured, running in template-only mode")
	}

	generator := proposal.NewGenerator(provider, cfg.LLM.Temperature, cfg.LLM.MaxTokens, collector, logger)
	pipeline := proposal.NewPipeline(proposalStore, generator, cfg.Cache.ProposalTTL, collector, logger)
	discoverySvc := discovery.NewService(cfg.Discovery, cfg.Cache.EventTTL, eventStore, collector, logger)

	tracker, err := funding.NewTracker(cfg.Funding.TrackerPath, logger)
	if err != nil {
		logger.Fatal("failed to open application tracker", zap.Error(err))
	}
	fundingSvc := funding.NewService(provider, tracker, logger)

	router := httpinterface.NewRouter(httpinterface.Handlers{
		Proposal: handlers.NewProposalHandler(pipeline, logger),
		Event:    handlers.NewEventHandler(discoverySvc, logger),
		Funding:  handlers.NewFundingHandler(fundingSvc, logger),
		Health:   handlers.NewHealthHandler(provider, version),
	}, collector, logger, cfg.Server.RequestTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background janitor so expired entries do not linger until the next
	// request for their key.
	go purgeLoop(ctx, pipeline, eventStore, cfg.Cache.PurgeInterval, logger)

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, cfg, logger)
		if err != nil {
			logger.Warn("config hot reload disabled", zap.Error(err))
		} else {
			watcher.OnReload(func(updated *config.Config) {
				pipeline.SetTTL(updated.Cache.ProposalTTL)
			})
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", string(cfg.Environment)),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == config.Production {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

func purgeLoop(ctx context.Context, pipeline *proposal.Pipeline, eventStore *cache.Store, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged := pipeline.PurgeExpired() + eventStore.PurgeExpired()
			if purged > 0 {
				logger.Debug("purged expired cache entries", zap.Int("count", purged))
			}
		}
	}
}
