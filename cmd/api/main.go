package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rental-pricing-api/config"
	"rental-pricing-api/dataset"
	"rental-pricing-api/handlers"
	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogger(cfg.Log)
	if !cfg.Log.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without shared cache and live feed")
	}
	defer cache.Close()

	var predLog *services.PredictionLogService
	if cfg.Database.Enabled {
		predLog, err = services.OpenPredictionLog(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open prediction log")
		}
		defer predLog.Close()
	}

	fetcher := dataset.NewHTTPFetcher(cfg.Datasets.HTTPTimeout)
	registry := services.NewRegistry(cfg.Registry, fetcher)
	var loader services.ArtifactLoader = registry
	if cfg.Registry.CacheTTL > 0 {
		loader = services.NewCachingLoader(registry, cfg.Registry.CacheTTL)
	}

	router := handlers.NewRouter(handlers.Deps{
		Snapshots:     services.NewSnapshotCache(fetcher, cache, cfg.Datasets.CacheTTL),
		PricingSpec:   dataset.Spec{URL: cfg.Datasets.PricingURL, IndexColumn: true},
		Predictor:     services.NewPredictor(loader),
		ModelURI:      registry.ModelURI(),
		Cache:         cache,
		PredictionLog: predLog,
		Auth:          services.NewAuthService(cfg.JWT),
		CORS:          cfg.CORS,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("model_uri", registry.ModelURI()).
			Bool("redis", cache.Available()).
			Bool("prediction_log", predLog.Enabled()).
			Msg("starting pricing api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
