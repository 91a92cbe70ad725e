package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// import pipeline.
type Metrics struct {
	PeriodsProcessed prometheus.Counter
	RowsRead         prometheus.Counter
	RowsIrregular    prometheus.Counter
	RowsFiltered     prometheus.Counter
	RecordsEmitted   prometheus.Counter
	ImportRunning    prometheus.Gauge
	DryRun           prometheus.Gauge

	BatchSize      prometheus.Histogram
	PeriodDuration prometheus.Histogram
}

// NewMetrics creates and registers all import metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PeriodsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_import",
			Name:      "periods_processed_total",
			Help:      "Monthly log files fully processed.",
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_import",
			Name:      "rows_read_total",
			Help:      "Raw rows read across all periods.",
		}),
		RowsIrregular: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_import",
			Name:      "rows_irregular_total",
			Help:      "Rows skipped for an unparseable date-time token.",
		}),
		RowsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_import",
			Name:      "rows_filtered_total",
			Help:      "Rows outside the configured date range.",
		}),
		RecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_import",
			Name:      "records_emitted_total",
			Help:      "Normalized records handed to the archive sink.",
		}),
		ImportRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_import",
			Name:      "import_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		DryRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_import",
			Name:      "dry_run",
			Help:      "1 when the active run is a dry run.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_import",
			Name:      "batch_size",
			Help:      "Records per batch handed to the archive sink.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		}),
		PeriodDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_import",
			Name:      "period_duration_seconds",
			Help:      "Wall time to import one monthly log file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.PeriodsProcessed,
		m.RowsRead,
		m.RowsIrregular,
		m.RowsFiltered,
		m.RecordsEmitted,
		m.ImportRunning,
		m.DryRun,
		m.BatchSize,
		m.PeriodDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PeriodsProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_import", Name: "periods_processed_total"}),
		RowsRead:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_import", Name: "rows_read_total"}),
		RowsIrregular:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_import", Name: "rows_irregular_total"}),
		RowsFiltered:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_import", Name: "rows_filtered_total"}),
		RecordsEmitted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_import", Name: "records_emitted_total"}),
		ImportRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "station_import", Name: "import_running"}),
		DryRun:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "station_import", Name: "dry_run"}),
		BatchSize:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "station_import", Name: "batch_size"}),
		PeriodDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "station_import", Name: "period_duration_seconds"}),
	}
}
