package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rateservice/internal/api"
	"rateservice/internal/api/middleware"
	"rateservice/internal/service"
)

func (app *App) initHTTP(rateService service.RateServiceInterface, syncService service.SyncServiceInterface, enqueuer api.SyncEnqueuer) error {
	syncLimiter, err := middleware.NewMemoryLimiter(app.cfg.RateLimit.ManualSync)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/rates", func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(app.cfg.Auth.APIKeys, app.logger))

		r.Get("/", api.HandleListRates(rateService))
		r.Get("/latest", api.HandleGetLatestRates(rateService))
		r.Get("/latest/{currency}", api.HandleGetLatestRate(rateService))
		r.Get("/history/{currency}", api.HandleGetRateHistory(rateService))
		r.Get("/today", api.HandleGetTodayRates(rateService))
		r.Get("/stats", api.HandleGetStats(rateService))
		r.Get("/currencies", api.HandleGetCurrencies(rateService))
		r.Get("/convert", api.HandleConvert(rateService))
		r.Get("/{id}", api.HandleGetRate(rateService))
		r.Delete("/{id}", api.HandleDeactivateRate(rateService))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitMiddleware(syncLimiter, app.logger))
			r.Post("/update", api.HandleManualUpdate(syncService, enqueuer, app.logger))
			r.Post("/sync", api.HandleProviderResync(syncService, enqueuer, app.logger))
		})
	})

	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring",
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Handle(mon.RootPath()+"/*", mon)
	}

	if app.cfg.Server.ServeSwagger {
		api.MountDocs(r)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(app.cfg.Worker.TimeoutSec)*time.Second + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}
