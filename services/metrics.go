package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_api_predictions_total",
		Help: "Total number of prices predicted, by endpoint.",
	}, []string{"endpoint"})
	predictionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_api_prediction_failures_total",
		Help: "Total number of failed prediction requests, by error kind.",
	}, []string{"kind"})
	artifactLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_api_artifact_load_duration_seconds",
		Help:    "Duration of a registry artifact load.",
		Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"artifact"})
	datasetFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_api_dataset_fetch_duration_seconds",
		Help:    "Duration of a remote dataset fetch and decode.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
	snapshotCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_api_snapshot_cache_hits_total",
		Help: "Dataset snapshot lookups served from cache, by tier.",
	}, []string{"tier"})
)

// RecordPrediction counts a served prediction request of n records.
func RecordPrediction(endpoint string, n int) {
	predictionsServed.WithLabelValues(endpoint).Add(float64(n))
}

// RecordFailure counts a failed prediction request.
func RecordFailure(err error) {
	predictionsFailed.WithLabelValues(KindOf(err).String()).Inc()
}
