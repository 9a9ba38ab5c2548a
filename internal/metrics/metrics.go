// Package metrics counts what a run did and can export the counters in the
// Prometheus text format, for example to a node_exporter textfile directory.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchdl"

// Download outcomes used as the "outcome" label.
const (
	OutcomeDownloaded = "downloaded"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// Recorder receives run events from the orchestrator.
type Recorder interface {
	PageFetched(results int)
	Download(outcome string, bytes int64)
	TransportError(kind string)
}

// Metrics is a Recorder backed by a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	pagesTotal      prometheus.Counter
	resultsTotal    prometheus.Counter
	downloadsTotal  *prometheus.CounterVec
	bytesTotal      prometheus.Counter
	errorsTotal     *prometheus.CounterVec
	fileSizeBytes   prometheus.Histogram
	lastRunFinished prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.pagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_fetched_total",
		Help:      "Result pages fetched from the search provider.",
	})
	m.resultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_total",
		Help:      "Search results received.",
	})
	m.downloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Results handled, by outcome.",
	}, []string{"outcome"})
	m.bytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloaded_bytes_total",
		Help:      "Bytes written to disk.",
	})
	m.errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transport_errors_total",
		Help:      "Recoverable download failures, by kind.",
	}, []string{"kind"})
	// 1KB .. 1GB
	m.fileSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "file_size_bytes",
		Help:      "Sizes of downloaded files.",
		Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
	})
	m.lastRunFinished = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_finished_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	m.registry.MustRegister(
		m.pagesTotal,
		m.resultsTotal,
		m.downloadsTotal,
		m.bytesTotal,
		m.errorsTotal,
		m.fileSizeBytes,
		m.lastRunFinished,
	)
	return m
}

func (m *Metrics) PageFetched(results int) {
	m.pagesTotal.Inc()
	m.resultsTotal.Add(float64(results))
}

func (m *Metrics) Download(outcome string, bytes int64) {
	m.downloadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeDownloaded {
		m.bytesTotal.Add(float64(bytes))
		m.fileSizeBytes.Observe(float64(bytes))
	}
}

func (m *Metrics) TransportError(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile stamps the finish time and writes all metrics to path
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	m.lastRunFinished.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.registry)
}

// Nop discards all events.
type Nop struct{}

func (Nop) PageFetched(int)        {}
func (Nop) Download(string, int64) {}
func (Nop) TransportError(string)  {}
