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
	"rental-pricing-api/dashboard"
	"rental-pricing-api/dataset"
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
		log.Warn().Err(err).Msg("redis unavailable, caching snapshots in memory only")
	}
	defer cache.Close()

	fetcher := dataset.NewHTTPFetcher(cfg.Datasets.HTTPTimeout)
	snapshots := services.NewSnapshotCache(fetcher, cache, cfg.Dashboard.CacheTTL)
	delaySpec := dataset.Spec{URL: cfg.Datasets.DelayURL}
	pricingSpec := dataset.Spec{URL: cfg.Datasets.PricingURL, IndexColumn: true}
	server := dashboard.NewServer(
		snapshots,
		delaySpec,
		pricingSpec,
		dashboard.NewPricingClient(cfg.Dashboard.APIURL, cfg.Datasets.HTTPTimeout, services.NewAuthService(cfg.JWT)),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Dashboard.RefreshInterval > 0 && cfg.Dashboard.CacheTTL > 0 {
		go services.RunRefresher(ctx, snapshots, []dataset.Spec{delaySpec, pricingSpec}, cfg.Dashboard.RefreshInterval)
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("api_url", cfg.Dashboard.APIURL).
			Dur("cache_ttl", cfg.Dashboard.CacheTTL).
			Msg("starting dashboard")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start dashboard")
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
