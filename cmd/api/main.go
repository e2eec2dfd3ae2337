package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/app"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/config"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/logging"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/metrics"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/planner"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/reliability"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/restapi"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
)

const (
	realtimeFetchTimeout = 15 * time.Second
	scheduleFeedLifetime = 90 * 24 * time.Hour
)

func main() {
	var configPath string
	var portFlag int
	var envFlag string
	var apiKeysFlag string
	var gtfsFlag string

	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.IntVar(&portFlag, "port", 0, "API server port (overrides config)")
	flag.StringVar(&envFlag, "env", "", "Environment (development|staging|production)")
	flag.StringVar(&apiKeysFlag, "api-keys", "", "Comma separated API keys")
	flag.StringVar(&gtfsFlag, "gtfs-source", "", "URL or path of a static GTFS zip file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, portFlag, envFlag, apiKeysFlag, gtfsFlag)

	logger := newLogger(cfg.Server.Env)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, port int, env, apiKeys, gtfsSource string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if env != "" {
		cfg.Server.Env = env
	}
	if apiKeys != "" {
		keys := strings.Split(apiKeys, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.Server.APIKeys = keys
	}
	if gtfsSource != "" {
		cfg.Schedule.StaticSource = gtfsSource
	}
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func run(cfg config.Config, logger *slog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, err := loadSchedule(cfg, logger)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	logger.Info("schedule loaded",
		"version", idx.Version(),
		"stops", idx.StopCount(),
		"expires", idx.ExpiresAt().Format(time.RFC3339))

	schedules := schedule.NewProvider(idx)
	scheduleRefresher := schedule.NewRefresher(schedules, cfg.Schedule.StaticSource, scheduleFeedLifetime, logger)
	defer scheduleRefresher.Shutdown()

	source, closeStore, err := reliabilitySource(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening reliability store: %w", err)
	}
	defer logging.HandleDeferredError(&err, closeStore, logger, "closing reliability store")

	refresh := time.Duration(cfg.Reliability.RefreshMinutes) * time.Minute
	reliabilityManager := reliability.NewManager(ctx, source, refresh)

	fetcher := realtime.NewFetcher(
		cfg.Realtime.TripUpdatesURL,
		cfg.Realtime.AlertsURL,
		cfg.Realtime.AuthHeaders(),
		realtimeFetchTimeout)
	realtimeManager := realtime.NewManager(ctx, fetcher)
	merger := realtime.NewMerger(realtimeManager)

	collector := metrics.NewCollector()
	collector.SetScheduleSnapshot(idx.StopCount(), time.Now())

	application := &app.Application{
		Config:      cfg,
		Logger:      logger,
		Schedules:   schedules,
		Reliability: reliabilityManager,
		Realtime:    realtimeManager,
		Merger:      merger,
		Planner:     planner.NewEngine(schedules, reliabilityManager, merger),
		Metrics:     collector,
	}
	defer application.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      restapi.NewRestAPI(application).Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Server.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// loadSchedule restores the schedule index from a local snapshot when one
// exists, otherwise it loads the static feed and writes a fresh snapshot.
func loadSchedule(cfg config.Config, logger *slog.Logger) (*schedule.Index, error) {
	snapshotPath := cfg.Schedule.SnapshotPath

	if snapshotPath != "" {
		if data, err := os.ReadFile(snapshotPath); err == nil {
			records, err := schedule.DecodeSnapshot(data)
			if err == nil {
				logger.Info("restored schedule snapshot", "path", snapshotPath)
				return records.Build()
			}
			logger.Warn("discarding unreadable schedule snapshot", "path", snapshotPath, "error", err)
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("reading schedule snapshot", "path", snapshotPath, "error", err)
		}
	}

	expiresAt := time.Now().Add(scheduleFeedLifetime)
	records, err := schedule.LoadFeedRecords(cfg.Schedule.StaticSource, cfg.Schedule.FeedVersion, expiresAt)
	if err != nil {
		return nil, err
	}

	if snapshotPath != "" {
		if data, err := schedule.EncodeSnapshot(records); err != nil {
			logger.Warn("encoding schedule snapshot", "error", err)
		} else if err := os.WriteFile(snapshotPath, data, 0o644); err != nil {
			logger.Warn("writing schedule snapshot", "path", snapshotPath, "error", err)
		}
	}

	return records.Build()
}

// reliabilitySource opens the delay sample store when a DSN is configured.
// Without one the planner runs on neutral scores.
func reliabilitySource(ctx context.Context, cfg config.Config, logger *slog.Logger) (reliability.AggregateSource, func() error, error) {
	dsn := cfg.Reliability.DatabaseDSN
	if dsn == "" {
		logger.Info("no reliability database configured, using neutral scores")
		return noAggregates{}, nil, nil
	}

	store, err := reliability.NewStore(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

type noAggregates struct{}

func (noAggregates) LoadAggregates(context.Context, time.Time) ([]reliability.Aggregate, error) {
	return nil, nil
}
