package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/hydro-explorer-service/internal/activity"
	"github.com/couchcryptid/hydro-explorer-service/internal/adapter/backend"
	httpadapter "github.com/couchcryptid/hydro-explorer-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hydro-explorer-service/internal/adapter/kafka"
	"github.com/couchcryptid/hydro-explorer-service/internal/config"
	"github.com/couchcryptid/hydro-explorer-service/internal/dashboard"
	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/couchcryptid/hydro-explorer-service/internal/observability"
)

// readiness is ready when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger, metrics)
	checks := readiness{client}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Activity feed (feature-flagged via ACTIVITY_ENABLED / KAFKA_BROKERS).
	// It outlives the signal context so the session_closed events emitted
	// during shutdown are still published.
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	var (
		recorder dashboard.Recorder
		writer   *kafkaadapter.Writer
		feedDone = make(chan struct{})
	)
	if cfg.ActivityEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		feed := activity.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		recorder = feed
		checks = append(checks, feed)
		go func() {
			defer close(feedDone)
			if err := feed.Run(feedCtx); err != nil {
				logger.Error("activity feed error", "error", err)
			}
		}()
		logger.Info("activity feed enabled", "topic", cfg.KafkaActivityTopic, "brokers", cfg.KafkaBrokers)
	} else {
		close(feedDone)
		logger.Info("activity feed disabled")
	}

	store := dashboard.NewStore(dashboard.Deps{
		Backend:  client,
		Logger:   logger,
		Metrics:  metrics,
		Recorder: recorder,
		MapOptions: domain.MapOptions{
			Zoom:    cfg.MapZoom,
			TileURL: cfg.MapTileURL,
		},
	}, cfg.SessionCacheSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, checks, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	store.CloseAll()
	stopFeed()

	select {
	case <-feedDone:
	case <-shutdownCtx.Done():
		logger.Warn("activity feed did not drain before shutdown deadline")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
