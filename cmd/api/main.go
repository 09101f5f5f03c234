package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "culture_hotspots/internal/adapters/http_server"
	"culture_hotspots/internal/adapters/observability"
	"culture_hotspots/internal/app"
	"culture_hotspots/internal/bootstrap"
	"culture_hotspots/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	repo, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init failed")
	}
	defer closeStore()
	cache, closeCache := bootstrap.OpenCache(ctx, cfg)
	defer closeCache()

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	if cfg.IngestOnStart {
		src, err := bootstrap.Source(cfg, "")
		if err != nil {
			log.Fatal().Err(err).Msg("ingestion source init failed")
		}
		ing := app.NewIngestionService(repo, cache, cfg.Workers)
		// the API still serves whatever the store holds if loading fails
		_, _ = ing.Initialize(ctx, src)
	}

	// http
	srv := server.New(cfg.CORSOrigins...)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutCtx)
	}
}
