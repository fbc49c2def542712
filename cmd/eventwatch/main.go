package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/makrx/realtime/internal/auth"
	"github.com/makrx/realtime/internal/config"
	"github.com/makrx/realtime/internal/database"
	"github.com/makrx/realtime/internal/feed"
	"github.com/makrx/realtime/internal/journal"
	"github.com/makrx/realtime/internal/realtime"
	"github.com/makrx/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/eventwatch.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting eventwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"base_url", cfg.Realtime.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Credentials: config values, environment fallback
	var creds auth.Source
	if cfg.Auth.UserID != "" || cfg.Auth.Token != "" {
		creds = auth.NewStaticSource(cfg.Auth.UserID, cfg.Auth.Token)
	} else {
		creds = auth.FromEnv()
	}

	// Connection manager
	manager := realtime.NewManager(realtime.ManagerConfig{
		BaseURL:              cfg.Realtime.BaseURL,
		HeartbeatInterval:    cfg.Realtime.HeartbeatInterval,
		LivenessTimeout:      cfg.Realtime.LivenessTimeout,
		ReconnectInterval:    cfg.Realtime.ReconnectInterval,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		MessageBufferSize:    cfg.Realtime.MessageBufferSize,
		WriteTimeout:         cfg.Realtime.WriteTimeout,
		EventTypes:           cfg.Realtime.EventTypes,
	}, creds, logger.With("component", "realtime"))
	defer manager.Disconnect()

	// Typed views
	orders := feed.NewOrders(manager)
	jobs := feed.NewServiceJobs(manager)
	alerts := feed.NewInventoryAlerts(manager)
	exports := feed.NewExports(manager)

	// Log every event as it arrives
	unsub := manager.On(realtime.Wildcard, func(evt realtime.Event) {
		logger.Info("event",
			"id", evt.ID,
			"type", evt.Type,
			"source", evt.Source,
			"timestamp", evt.Timestamp,
		)
	})
	defer unsub()

	// Optional event journal
	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		logger.Info("connecting to journal database",
			"host", cfg.Database.Postgres.Host,
			"database", cfg.Database.Postgres.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		jrnl = journal.New(journal.Config{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
		}, pool, logger.With("component", "journal"))

		if err := jrnl.Start(ctx); err != nil {
			logger.Error("failed to start journal", "error", err)
			os.Exit(1)
		}

		// Detach the handler before stopping, so nothing lands in the
		// buffer after the final flush.
		recordUnsub := manager.On(realtime.Wildcard, jrnl.Record)
		defer func() {
			recordUnsub()
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			jrnl.Stop(stopCtx)
		}()
	}

	if cfg.Realtime.ShouldAutoConnect() {
		manager.Connect()
	} else {
		logger.Info("auto-connect disabled, session left closed")
	}

	g, gctx := errgroup.WithContext(ctx)

	// Periodic status report
	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats := manager.Stats()
				logger.Info("status",
					"connection", manager.Status(),
					"events", stats.EventsReceived,
					"reconnects", stats.Reconnects,
					"parse_errors", stats.ParseErrors,
					"dropped", stats.DroppedMessages,
					"recent_orders", orders.Len(),
					"recent_jobs", jobs.Len(),
					"recent_alerts", alerts.Len(),
					"recent_exports", exports.Len(),
				)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("eventwatch exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("eventwatch stopped")
}
