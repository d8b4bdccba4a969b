// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ridehail-platform/internal/audit"
	"ridehail-platform/internal/authz"
	"ridehail-platform/internal/common/auth"
	"ridehail-platform/internal/common/aws"
	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/database"
	"ridehail-platform/internal/common/httpclient"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/common/observability"
	"ridehail-platform/internal/maps"
	"ridehail-platform/internal/notify"
	"ridehail-platform/internal/repository"
	"ridehail-platform/internal/rides"
	"ridehail-platform/internal/server"
	"ridehail-platform/internal/verification"
	"ridehail-platform/internal/workflow"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api-server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
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

	// --- Init Elasticsearch (audit trail only, optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Audit.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			// audit is best-effort, the service runs without it
			zapLog.Warn("elasticsearch unavailable, audit trail disabled", zap.Error(err))
			esClient = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Init AWS notification clients ---
	var sesClient notify.SESService
	var snsClient notify.SNSService
	if cfg.Integrations.AWS.SES.Enabled {
		client, sesErr := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if sesErr != nil {
			zapLog.Warn("SES client init failed, email notices disabled", zap.Error(sesErr))
		} else {
			sesClient = client
		}
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		client, snsErr := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if snsErr != nil {
			zapLog.Warn("SNS client init failed, SMS notices disabled", zap.Error(snsErr))
		} else {
			snsClient = client
		}
	}

	// --- Wire domain components ---
	applicationRepo := repository.NewApplicationRepository(pg.DB, log)
	rideRepo := repository.NewRideRepository(pg.DB, log)

	identityClient := auth.NewIdentityClient(cfg.Identity)
	gate := authz.NewGate(applicationRepo, redisClient.Client,
		time.Duration(cfg.Identity.CacheTTLSeconds)*time.Second, log)

	checker := verification.NewSimulator(config.GetDuration(cfg.Verification.DelayMs), log)
	notifier := notify.NewDecisionNotifier(cfg.Integrations, sesClient, snsClient, log)

	var trail *audit.Trail
	if esClient != nil {
		trail = audit.NewTrail(cfg.Audit, esClient.Client, log)
	}

	var auditor workflow.ReviewAuditor
	if trail != nil {
		auditor = trail
	}
	orchestrator := workflow.NewOrchestrator(applicationRepo, checker, notifier, auditor, gate, log)

	mapsClient := maps.NewClient(cfg.APIs, httpclient.NewClient(config.GetDuration(cfg.APIs.Maps.Timeout)), log)
	rideService := rides.NewService(rideRepo, mapsClient, log)

	srv := server.New(cfg.Server, identityClient, gate, orchestrator, rideService, mapsClient, applicationRepo, log)

	// --- Metrics and pprof sidecar ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsAddress, nil); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// --- Serve until shutdown signal ---
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("api-server stopped")
}
