// cmd/rfq-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gendra-backend/internal/common/aws"
	"gendra-backend/internal/common/config"
	"gendra-backend/internal/common/database"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/common/observability"
	"gendra-backend/internal/industry"
	"gendra-backend/internal/notify"
	"gendra-backend/internal/pricing"
	"gendra-backend/internal/rfq/extract"
	"gendra-backend/internal/server"
	"gendra-backend/internal/storage"
	"gendra-backend/internal/telemetry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting rfq-server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := industry.Validate(); err != nil {
		zapLog.Fatal("industry registry invalid", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init telemetry sink ---
	// Elasticsearch is observability, not a dependency the pipeline should
	// die for. Unreachable cluster degrades telemetry to log lines.
	var sink telemetry.Sink
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err == nil {
		err = esClient.Ping()
	}
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, telemetry degrades to logs", zap.Error(err))
		sink = telemetry.NewLoggingSink(log)
	} else {
		sink = telemetry.NewElasticsearchSink(esClient, cfg.Database.Elasticsearch.TelemetryIndex, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init notification clients ---
	var notifier server.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		var email notify.EmailSender
		var sms notify.SMSSender

		if cfg.Notifications.Email.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Warn("ses client init failed, email notifications disabled", zap.Error(err))
			} else {
				email = sesClient
			}
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Warn("sns client init failed, sms notifications disabled", zap.Error(err))
			} else {
				sms = snsClient
			}
		}
		notifier = notify.NewNotifier(cfg.Notifications, email, sms, sink, log)
	}

	// --- Wire the pipeline ---
	extractor := extract.NewHandler(extract.NewConfig(cfg.Extraction), log, sink)
	resolver := pricing.NewResolver(cfg.Pricing.BackendURL, config.GetDuration(cfg.Pricing.Timeout), log, sink)
	drafts := storage.NewDraftStore(pg, redis, config.GetDuration(cfg.Database.Redis.CacheTTL), log)
	submissions := storage.NewSubmissionStore(pg, log)

	srv := server.New(cfg, log, server.Deps{
		Extractor:   extractor,
		Resolver:    resolver,
		Drafts:      drafts,
		Submissions: submissions,
		Notifier:    notifier,
		Healthcheck: func(ctx context.Context) error {
			if err := pg.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := redis.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("rfq-server stopped gracefully")
}
