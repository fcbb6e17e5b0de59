// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"growth-assistant/internal/api"
	"growth-assistant/internal/audit"
	"growth-assistant/internal/common/config"
	"growth-assistant/internal/common/database"
	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/common/observability"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/pipeline/monitor"
	"growth-assistant/internal/pipeline/scanner"
	"growth-assistant/internal/store"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting growth assistant server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("server")
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

	if err := store.RunMigrations(cfg.Database.Postgres.GetURL(), "internal/store/migrations"); err != nil {
		zapLog.Fatal("migrations failed", zap.Error(err))
	}
	zapLog.Info("Database migrations applied")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Optional Elasticsearch audit mirror ---
	storeOpts := []store.Option{}
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		storeOpts = append(storeOpts, store.WithAuditor(audit.NewIndexer(esClient.Client, cfg.Audit.Index, log)))
	}

	st := store.New(pg.DB, log, storeOpts...)

	// --- Delivery backend ---
	var sender gateway.Sender
	switch cfg.Gateway.Backend {
	case "sns":
		sender, err = gateway.NewSNSSender(ctx, cfg.Gateway.AWSRegion, cfg.Gateway.SMSSenderID, log)
		if err != nil {
			zapLog.Fatal("sns sender init failed", zap.Error(err))
		}
	default:
		sender = gateway.NewWALinkSender(log)
	}

	// The pipelines call the gateway endpoint over HTTP even when it runs
	// in this process, so the delivery contract stays in one place.
	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    time.Duration(cfg.Gateway.Timeout) * time.Millisecond,
		RatePerSec: cfg.Gateway.RatePerSec,
		Burst:      cfg.Gateway.Burst,
	}, log)

	scan := scanner.New(st, gatewayClient, log)
	mon := monitor.New(st, gatewayClient, cfg.Pipeline.RevenueThreshold, log)

	server := api.NewServer(&api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Millisecond,
	}, st, sender, scan, mon, map[string]api.Pinger{
		"postgres": pg,
		"redis":    redisClient,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	if err := server.Shutdown(context.Background()); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
