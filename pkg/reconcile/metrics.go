package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for merge runs. A nil *Metrics
// records nothing.
type Metrics struct {
	Registry           *prometheus.Registry
	ResponsesAdded     *prometheus.CounterVec
	DocumentsProcessed prometheus.Counter
	DocumentsSkipped   prometheus.Counter
	StoreFailures      *prometheus.CounterVec
	MergeDuration      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ResponsesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annomerge_responses_added_total",
				Help: "Responses added for assessment, by annotation store.",
			},
			[]string{"store"},
		),
		DocumentsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "annomerge_documents_processed_total",
				Help: "System output documents merged into annotation stores.",
			},
		),
		DocumentsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "annomerge_documents_skipped_total",
				Help: "System output documents rejected by the document selector.",
			},
		),
		StoreFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annomerge_store_failures_total",
				Help: "Annotation store failures, by annotation store.",
			},
			[]string{"store"},
		),
		MergeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "annomerge_document_merge_seconds",
				Help:    "Time to merge one document into every annotation store.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
	}
	m.Registry.MustRegister(
		m.ResponsesAdded,
		m.DocumentsProcessed,
		m.DocumentsSkipped,
		m.StoreFailures,
		m.MergeDuration,
	)
	return m
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) added(store string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ResponsesAdded.WithLabelValues(store).Add(float64(n))
}

func (m *Metrics) processed() {
	if m == nil {
		return
	}
	m.DocumentsProcessed.Inc()
}

func (m *Metrics) skipped() {
	if m == nil {
		return
	}
	m.DocumentsSkipped.Inc()
}

func (m *Metrics) failed(store string) {
	if m == nil {
		return
	}
	m.StoreFailures.WithLabelValues(store).Inc()
}

func (m *Metrics) observe(seconds float64) {
	if m == nil {
		return
	}
	m.MergeDuration.Observe(seconds)
}
