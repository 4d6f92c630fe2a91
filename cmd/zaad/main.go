package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"zaad/internal/aggregate"
	"zaad/internal/amqp"
	"zaad/internal/backend"
	"zaad/internal/cache"
	"zaad/internal/cli"
	"zaad/internal/core"
	apphttp "zaad/internal/http"
	"zaad/internal/log"
	"zaad/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp, false)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	entityCache := cache.NewLRUCache[[]core.Entity](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(entityCache)
	cacheManager.StartCleanup(cfg.CacheTTL)

	// Change messages are optional: without a broker the export worker
	// falls back to its periodic run.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change messages", log.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - exports run on the worker interval only")
	}

	records := services.NewRecordService(result.Store, publisher, entityCache)
	summary := services.NewSummaryService(result.Store, records, aggregate.Options{
		Location: cfg.Location(),
		SelfTag:  cfg.SelfTag,
	})

	srv := apphttp.NewServer(":"+cfg.Port, records, summary, apphttp.Options{
		Logger:             logger,
		Store:              result.Store,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheStats:         entityCache.Stats,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := records.Close(); err != nil {
			logger.Error("Record service close error", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting zaad server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
