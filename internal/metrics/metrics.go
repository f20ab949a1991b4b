// Package metrics provides Prometheus metrics for the training pipeline:
// dataset throughput, skip reasons, and model fitting progress. They are
// exposed on the optional metrics endpoint when one is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a training run.
type Metrics struct {
	CSVFilesLoaded  prometheus.Counter // Total CSV files loaded from the data folders
	DatasetsLoaded  prometheus.Counter // Total datasets entering the pipeline
	DatasetsTrained prometheus.Counter // Datasets that produced a fitted model

	SkipsNoTimestamp prometheus.Counter // Datasets skipped for a missing timestamp column
	SkipsNoTarget    prometheus.Counter // Datasets skipped for a missing close column
	SkipsTooShort    prometheus.Counter // Datasets skipped because the series is shorter than the window

	TrainingDuration prometheus.Histogram // Duration of one dataset's model fit in seconds
	EpochLoss        prometheus.Histogram // Distribution of per-epoch training loss

	LastRunDatasets prometheus.Gauge // Dataset count of the most recent run
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		CSVFilesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "csv_files_loaded_total",
			Help: "Total number of CSV files loaded from the data folders",
		}),
		DatasetsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "datasets_loaded_total",
			Help: "Total number of datasets entering the pipeline",
		}),
		DatasetsTrained: factory.NewCounter(prometheus.CounterOpts{
			Name: "datasets_trained_total",
			Help: "Total number of datasets that produced a fitted model",
		}),
		SkipsNoTimestamp: factory.NewCounter(prometheus.CounterOpts{
			Name: "datasets_skipped_no_timestamp_total",
			Help: "Datasets skipped because no timestamp column was found",
		}),
		SkipsNoTarget: factory.NewCounter(prometheus.CounterOpts{
			Name: "datasets_skipped_no_target_total",
			Help: "Datasets skipped because no close column was found",
		}),
		SkipsTooShort: factory.NewCounter(prometheus.CounterOpts{
			Name: "datasets_skipped_too_short_total",
			Help: "Datasets skipped because the target series is shorter than the window length",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of one dataset's model fit in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		EpochLoss: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_epoch_loss",
			Help:    "Distribution of per-epoch training loss",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 12),
		}),
		LastRunDatasets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "last_run_datasets",
			Help: "Number of datasets in the most recent run",
		}),
	}
}

// EpochLossObserve satisfies the model package's metrics interface.
func (m *Metrics) EpochLossObserve(v float64) {
	m.EpochLoss.Observe(v)
}
