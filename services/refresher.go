package services

import (
	"context"
	"time"

	"rental-pricing-api/dataset"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	refreshCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_snapshot_refresh_cycle_duration_seconds",
		Help:    "Duration of a snapshot refresh cycle.",
		Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
	refreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_snapshot_refresh_failures_total",
		Help: "Total number of datasets that failed to refresh.",
	})
)

// RunRefresher reloads every snapshot immediately and then once per
// interval until ctx is done. A failed reload leaves the dataset out of the
// cache until the next cycle or the next request.
func RunRefresher(ctx context.Context, cache *SnapshotCache, specs []dataset.Spec, interval time.Duration) {
	log.Info().Dur("interval", interval).Int("datasets", len(specs)).Msg("snapshot refresher running")

	refreshCycle(ctx, cache, specs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refreshCycle(ctx, cache, specs)
		case <-ctx.Done():
			log.Info().Msg("snapshot refresher shutting down")
			return
		}
	}
}

func refreshCycle(ctx context.Context, cache *SnapshotCache, specs []dataset.Spec) int {
	start := time.Now()
	defer func() {
		refreshCycleDuration.Observe(time.Since(start).Seconds())
	}()

	refreshed := 0
	for _, spec := range specs {
		if err := cache.Invalidate(ctx, spec.URL); err != nil {
			log.Warn().Err(err).Str("url", spec.URL).Msg("failed to invalidate snapshot")
		}
		frame, err := cache.Get(ctx, spec)
		if err != nil {
			refreshFailures.Inc()
			log.Warn().Err(err).Str("url", spec.URL).Msg("snapshot refresh failed")
			continue
		}
		refreshed++
		log.Debug().Str("url", spec.URL).Int("rows", frame.Len()).Msg("snapshot refreshed")
	}

	log.Info().
		Int("refreshed", refreshed).
		Int("datasets", len(specs)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot refresh cycle completed")
	return refreshed
}
