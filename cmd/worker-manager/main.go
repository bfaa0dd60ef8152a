// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dealflow-workers/internal/common/aws"
	"dealflow-workers/internal/common/camunda"
	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/database"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/observability"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/repository"
	"dealflow-workers/pkg/registry"
)

const serviceName = "worker-manager"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.Build(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     serviceName,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger.NewZapAdapter(zapLog)); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(serviceName, observability.Options{
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err})
		}
	}()

	conns, err := database.Open(ctx, cfg.Database, database.RetryPolicy{
		Attempts:  15,
		BaseDelay: 2 * time.Second,
		MaxDelay:  30 * time.Second,
	}, log)
	if err != nil {
		return fmt.Errorf("connect stores: %w", err)
	}
	defer conns.Close()

	zeebe, err := connectZeebe(ctx, cfg.Camunda, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := zeebe.Close(); err != nil {
			log.Error("error closing zeebe client", map[string]interface{}{"error": err})
		}
	}()

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return err
	}
	validator, err := reg.Validator()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg.Matching)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	pgStore := repository.NewPostgresStore(conns.Postgres.DB)
	deps := dependencies{
		cfg:       cfg,
		engine:    engine,
		store:     repository.NewCachedStore(pgStore, pgStore, conns.Redis.Client, cfg.Matching.CacheTTLDuration(), log),
		matches:   pgStore,
		searcher:  repository.NewElasticsearchSearcher(conns.Elasticsearch.Client, cfg.Matching.CandidateIndex),
		publisher: publisher,
		validator: validator,
		obs:       obs,
		log:       log,
	}

	registrations, err := buildRegistrations(deps, reg)
	if err != nil {
		return err
	}

	workers := camunda.NewWorkerSet(log)
	defer workers.Close()
	for _, r := range registrations {
		if err := workers.Start(zeebe.GetClient(), r); err != nil {
			return err
		}
	}
	log.Info("workers registered", map[string]interface{}{"taskTypes": workers.TaskTypes()})

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           newRouter(readiness(conns, zeebe), log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("health and metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping workers", nil)
	case err := <-serverErr:
		log.Error("health server failed", map[string]interface{}{"error": err})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("health server shutdown failed", map[string]interface{}{"error": err})
	}

	log.Info("worker manager stopped", nil)
	return nil
}

// connectZeebe waits for the gateway to answer a topology request. Brokers
// in compose setups routinely come up after the workers.
func connectZeebe(ctx context.Context, cfg config.CamundaConfig, log logger.Logger) (*camunda.Client, error) {
	retry := &camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	client, err := camunda.ExecuteWithRetry(ctx, retry, "zeebe-connect", func(ctx context.Context) (*camunda.Client, error) {
		c, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: cfg.Plaintext,
			RequestTimeout:         config.GetDuration(cfg.RequestTimeout),
		})
		if err != nil {
			log.Warn("zeebe not reachable yet", map[string]interface{}{
				"gateway": cfg.BrokerAddress,
				"error":   err,
			})
		}
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("connect zeebe: %w", err)
	}

	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.BrokerAddress})
	return client, nil
}

func newEngine(cfg config.MatchingConfig) (*matching.Engine, error) {
	engineCfg := matching.DefaultConfig()
	if cfg.SynonymsPath != "" {
		synonyms, err := matching.LoadSynonymsFile(cfg.SynonymsPath)
		if err != nil {
			return nil, err
		}
		engineCfg = engineCfg.WithSynonyms(synonyms)
	}
	return matching.NewEngine(engineCfg), nil
}

func newPublisher(ctx context.Context, cfg *config.Config) (aws.EventPublisher, error) {
	if !cfg.Notifications.AWS.SNS.Enabled {
		return aws.NoopPublisher{}, nil
	}
	return aws.NewSNSPublisher(ctx, cfg.Notifications.AWS.Region, cfg.Matching.HighConfidenceTopicARN)
}

// readiness reports every backing store plus the Zeebe gateway.
func readiness(conns *database.Connections, zeebe *camunda.Client) func(context.Context) map[string]error {
	return func(ctx context.Context) map[string]error {
		failures := conns.Ping(ctx)
		if err := zeebe.HealthCheck(ctx); err != nil {
			failures["zeebe"] = err
		}
		return failures
	}
}
