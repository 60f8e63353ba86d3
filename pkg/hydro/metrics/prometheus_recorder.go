package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// PrometheusRecorder is a Prometheus implementation of Recorder backed by a
// private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	runStatusCounter   *prometheus.CounterVec
	runDurationSeconds *prometheus.HistogramVec

	rowsIngested  *prometheus.CounterVec
	ticksBuilt    *prometheus.CounterVec
	ticksMissing  *prometheus.CounterVec
	seriesStored  *prometheus.CounterVec
	seriesFailed  *prometheus.CounterVec
}

// NewPrometheusRecorder creates a PrometheusRecorder with Go runtime and
// process collectors pre-registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		runStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_run_status_total",
			Help: "Total runs by command and final status.",
		}, []string{"command", "status"}),
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hydrocli_run_duration_seconds",
			Help:    "Duration of runs by command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command", "status"}),
		rowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_rows_ingested_total",
			Help: "Rows retained after window filtering, by project.",
		}, []string{"project"}),
		ticksBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_ticks_built_total",
			Help: "Output grid ticks built, by project and series.",
		}, []string{"project", "series"}),
		ticksMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_ticks_missing_total",
			Help: "Output grid ticks with no source data, by project and series.",
		}, []string{"project", "series"}),
		seriesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_series_stored_total",
			Help: "Series accepted by the data service.",
		}, []string{"project", "series"}),
		seriesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hydrocli_series_failed_total",
			Help: "Series rejected by the data service.",
		}, []string{"project", "series"}),
	}

	registry.MustRegister(r.runStatusCounter)
	registry.MustRegister(r.runDurationSeconds)
	registry.MustRegister(r.rowsIngested)
	registry.MustRegister(r.ticksBuilt)
	registry.MustRegister(r.ticksMissing)
	registry.MustRegister(r.seriesStored)
	registry.MustRegister(r.seriesFailed)

	return r
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordRunStart records the start of a run.
func (r *PrometheusRecorder) RecordRunStart(ctx context.Context, command string) {
	r.runStatusCounter.WithLabelValues(command, "started").Inc()
	logger.Debugf("metrics: run of %s started", command)
}

// RecordRunEnd records the end of a run.
func (r *PrometheusRecorder) RecordRunEnd(ctx context.Context, command string, status string, duration time.Duration) {
	r.runStatusCounter.WithLabelValues(command, status).Inc()
	r.runDurationSeconds.WithLabelValues(command, status).Observe(duration.Seconds())
	logger.Debugf("metrics: run of %s ended with %s after %.3fs", command, status, duration.Seconds())
}

// RecordRowsIngested records retained row counts.
func (r *PrometheusRecorder) RecordRowsIngested(ctx context.Context, project string, count int) {
	r.rowsIngested.WithLabelValues(project).Add(float64(count))
}

// RecordTicksBuilt records per-series grid sizes.
func (r *PrometheusRecorder) RecordTicksBuilt(ctx context.Context, project string, series string, total int, missing int) {
	r.ticksBuilt.WithLabelValues(project, series).Add(float64(total))
	r.ticksMissing.WithLabelValues(project, series).Add(float64(missing))
}

// RecordSeriesStored records an accepted series.
func (r *PrometheusRecorder) RecordSeriesStored(ctx context.Context, project string, series string) {
	r.seriesStored.WithLabelValues(project, series).Inc()
}

// RecordSeriesFailed records a rejected series.
func (r *PrometheusRecorder) RecordSeriesFailed(ctx context.Context, project string, series string) {
	r.seriesFailed.WithLabelValues(project, series).Inc()
}

var _ Recorder = (*PrometheusRecorder)(nil)
