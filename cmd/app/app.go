// Package main is the entry point for the TCMB exchange rate service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rateservice/internal/config"
	"rateservice/internal/metrics"
	"rateservice/internal/provider"
	"rateservice/internal/repository"
	"rateservice/internal/service"
	"rateservice/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *zap.SugaredLogger
	db             *sql.DB
	rdbCache       *redis.Client
	rdbAsynq       *redis.Client
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqMux       *asynq.ServeMux
	asynqScheduler *asynq.Scheduler
	registry       *prometheus.Registry
	httpServer     *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	db, err := repository.NewPostgresDB(&app.cfg.Database, app.logger)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}

	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}
	taskTimeout := time.Duration(app.cfg.Worker.TimeoutSec) * time.Second
	loc := app.cfg.Scheduler.Location()

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: app.cfg.Worker.Concurrency,
			Logger:      app.logger,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := metrics.NewSyncMetrics(app.registry)

	rateRepo := repository.NewPostgresRateRepository(app.db)
	feed := newRatesFeed(app.cfg, app.rdbCache, loc, app.logger)
	syncService := service.NewSyncService(rateRepo, feed, app.rdbCache, syncMetrics, app.logger)
	rateService := service.NewRateService(rateRepo, app.rdbCache, app.logger, app.cfg.Cache, loc)
	enqueuer := worker.NewAsynqEnqueuer(app.asynqClient, taskTimeout)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeSyncRates, worker.NewSyncRatesHandler(syncService, app.logger))

	if app.cfg.Scheduler.Enabled {
		app.asynqScheduler = worker.NewScheduler(redisOpt, loc, app.logger)
		entryID, err := worker.RegisterDailySync(app.asynqScheduler, app.cfg.Scheduler.Cron, taskTimeout)
		if err != nil {
			return err
		}
		app.logger.Infow("Daily sync scheduled",
			"cron", app.cfg.Scheduler.Cron,
			"timezone", loc.String(),
			"entry_id", entryID,
		)
	}

	return app.initHTTP(rateService, syncService, enqueuer)
}

// newRatesFeed builds the feed chain: live TCMB document, cached in Redis, with the
// static table as the last resort.
func newRatesFeed(cfg *config.Config, cache *redis.Client, loc *time.Location, logger *zap.SugaredLogger) provider.RatesFeed {
	ttl := time.Duration(cfg.Feed.CacheTTLSec) * time.Second

	live := provider.NewTCMBFeed(cfg.Feed.URL, cfg.Feed.TimeoutSec, loc)
	cached := provider.NewCachedRatesFeed(live, cache, ttl, "tcmb", logger)
	return provider.NewFallbackFeed(cached, loc)
}

// Run starts the HTTP server, Asynq worker and scheduler, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	if app.asynqScheduler != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq scheduler")
			if err := app.asynqScheduler.Start(); err != nil {
				return fmt.Errorf("asynq scheduler failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> Asynq worker -> connections.
// In-flight syncs finish before the DB and Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Stop enqueuing scheduled syncs
	if app.asynqScheduler != nil {
		app.asynqScheduler.Shutdown()
	}

	// 3. Drain in-flight Asynq tasks
	app.asynqServer.Shutdown()

	// 4. Close connections (asynq client, Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
