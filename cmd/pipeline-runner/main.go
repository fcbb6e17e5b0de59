// cmd/pipeline-runner/main.go

// The pipeline runner triggers the vendor performance scan and the
// revenue threshold check on an interval, holding a Redis lease per
// operation so overlapping runners never double-fire.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"growth-assistant/internal/common/config"
	"growth-assistant/internal/common/database"
	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/common/observability"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/pipeline/monitor"
	"growth-assistant/internal/pipeline/runlock"
	"growth-assistant/internal/pipeline/scanner"
	"growth-assistant/internal/report"
	"growth-assistant/internal/store"
)

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
	once := flag.Bool("once", false, "run both operations once and exit")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline runner...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("pipeline-runner")
	defer obs.Shutdown()

	ctx := context.Background()

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

	st := store.New(pg.DB, log)

	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    time.Duration(cfg.Gateway.Timeout) * time.Millisecond,
		RatePerSec: cfg.Gateway.RatePerSec,
		Burst:      cfg.Gateway.Burst,
	}, log)

	scan := scanner.New(st, gatewayClient, log)
	mon := monitor.New(st, gatewayClient, cfg.Pipeline.RevenueThreshold, log)

	var lock *runlock.Lock
	if cfg.Pipeline.LockEnabled {
		lock = runlock.New(redisClient.Client, time.Duration(cfg.Pipeline.LockTTL)*time.Second, log)
	}

	var reporter *report.Reporter
	if cfg.Report.Enabled {
		reporter, err = report.New(ctx, cfg.Report.AWSRegion, cfg.Report.FromEmail, cfg.Report.ToEmail, log)
		if err != nil {
			zapLog.Fatal("reporter init failed", zap.Error(err))
		}
	}

	runAll := func() {
		runScan(ctx, scan, lock, reporter, obs, log)
		runCheck(ctx, mon, lock, reporter, obs, log)
	}

	if *once {
		runAll()
		zapLog.Info("Single run complete, exiting")
		return
	}

	interval := time.Duration(cfg.Pipeline.Interval) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	zapLog.Info("Pipeline runner started", zap.Duration("interval", interval))
	runAll()

	for {
		select {
		case <-ticker.C:
			runAll()
		case <-sigCh:
			zapLog.Info("Shutdown signal received, stopping runner")
			return
		}
	}
}

func runScan(ctx context.Context, scan *scanner.Scanner, lock *runlock.Lock, reporter *report.Reporter, obs *observability.Observability, log logger.Logger) {
	if lock != nil {
		release, err := lock.Acquire(ctx, "auto-send")
		if err != nil {
			logLockSkip(log, "auto-send", err)
			return
		}
		defer release()
	}

	start := time.Now()
	result, err := scan.Scan(ctx)
	obs.RecordRunDuration(ctx, "auto-send", time.Since(start))
	if err != nil {
		obs.RecordRun(ctx, "auto-send", "error")
		log.Error("Scan run failed", map[string]interface{}{"error": err.Error()})
		return
	}
	obs.RecordRun(ctx, "auto-send", "success")
	reporter.RunCompleted(ctx, "auto-send",
		fmt.Sprintf("Vendor performance scan sent %d notifications.", result.AutoSent))
}

func runCheck(ctx context.Context, mon *monitor.Monitor, lock *runlock.Lock, reporter *report.Reporter, obs *observability.Observability, log logger.Logger) {
	if lock != nil {
		release, err := lock.Acquire(ctx, "revenue-check")
		if err != nil {
			logLockSkip(log, "revenue-check", err)
			return
		}
		defer release()
	}

	start := time.Now()
	result, err := mon.Check(ctx)
	obs.RecordRunDuration(ctx, "revenue-check", time.Since(start))
	if err != nil {
		obs.RecordRun(ctx, "revenue-check", "error")
		log.Error("Revenue check failed", map[string]interface{}{"error": err.Error()})
		return
	}
	obs.RecordRun(ctx, "revenue-check", "success")
	reporter.RunCompleted(ctx, "revenue-check",
		fmt.Sprintf("Revenue check (threshold %.0f) sent %d notifications across %d vendors.",
			result.Threshold, result.NotificationsSent, len(result.Vendors)))
}

func logLockSkip(log logger.Logger, operation string, err error) {
	if apperrors.CodeOf(err) == apperrors.ErrCodeRunInProgress {
		log.Info("Run already in progress, skipping", map[string]interface{}{
			"operation": operation,
		})
		return
	}
	log.Error("Run lock acquisition failed", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})
}
