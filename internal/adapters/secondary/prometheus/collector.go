package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	output "dataset-artifact-service/internal/core/ports/output"
)

var (
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_uploads_total",
			Help: "Total number of upload requests by outcome",
		},
		[]string{"outcome"},
	)

	processingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_processing_duration_seconds",
			Help:    "Time spent in the analytical engine per upload",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

type uploadMetrics struct{}

// NewUploadMetrics returns the pipeline collector registered on the default
// Prometheus registry.
func NewUploadMetrics() output.UploadMetrics {
	return uploadMetrics{}
}

func (uploadMetrics) ObserveUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

func (uploadMetrics) ObserveProcessing(seconds float64) {
	processingDuration.Observe(seconds)
}
