package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// PipelineMetrics tracks analysis and batch activity on a private registry.
type PipelineMetrics struct {
	registry *prometheus.Registry

	analyzeTotal    *prometheus.CounterVec
	analyzeDuration *prometheus.HistogramVec
	visionFallbacks prometheus.Counter
	batchInFlight   prometheus.Gauge
	batchFilesTotal *prometheus.CounterVec
	organizedTotal  *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	analyzeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorg",
			Subsystem: "pipeline",
			Name:      "analyze_total",
			Help:      "Total analyzed screenshots by processing method and status.",
		},
		[]string{"service", "method", "status"},
	)
	analyzeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorg",
			Subsystem: "pipeline",
			Name:      "analyze_duration_seconds",
			Help:      "Screenshot analysis duration in seconds by processing method.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service", "method"},
	)
	visionFallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sorg",
			Subsystem: "pipeline",
			Name:      "vision_fallback_total",
			Help:      "Analyses that fell back to the vision describer.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sorg",
			Subsystem: "batch",
			Name:      "files_in_flight",
			Help:      "Number of files currently being processed in a batch.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorg",
			Subsystem: "batch",
			Name:      "files_total",
			Help:      "Total batch-processed files by status.",
		},
		[]string{"service", "status"},
	)
	organizedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorg",
			Subsystem: "organizer",
			Name:      "files_organized_total",
			Help:      "Total organized files by category.",
		},
		[]string{"service", "category"},
	)

	registry.MustRegister(analyzeTotal, analyzeDuration, visionFallbacks, batchInFlight, batchFilesTotal, organizedTotal)

	return &PipelineMetrics{
		registry:        registry,
		analyzeTotal:    analyzeTotal,
		analyzeDuration: analyzeDuration,
		visionFallbacks: visionFallbacks,
		batchInFlight:   batchInFlight,
		batchFilesTotal: batchFilesTotal,
		organizedTotal:  organizedTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one pipeline run. A nil result method is reported
// as vision since only describe-terminal runs can fail.
func (m *PipelineMetrics) ObserveAnalysis(service string, result domain.AnalysisResult, err error) {
	method := string(result.ProcessingMethod)
	if method == "" {
		method = string(domain.MethodVision)
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.analyzeTotal.WithLabelValues(service, method, status).Inc()
	m.analyzeDuration.WithLabelValues(service, method).Observe(result.ProcessingTimeMs / 1000)
	if result.ProcessingMethod == domain.MethodVision && result.ExtractedText != "" {
		m.visionFallbacks.Inc()
	}
}

// StartBatchFile and FinishBatchFile bracket one file of a batch run.
func (m *PipelineMetrics) StartBatchFile() {
	m.batchInFlight.Inc()
}

func (m *PipelineMetrics) FinishBatchFile(service string, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.batchFilesTotal.WithLabelValues(service, status).Inc()
}

// ObserveBatch records a completed batch run's aggregate counts. Used by
// boundaries that only see the final stats.
func (m *PipelineMetrics) ObserveBatch(service string, stats domain.BatchStats) {
	m.batchFilesTotal.WithLabelValues(service, "success").Add(float64(stats.Successful))
	m.batchFilesTotal.WithLabelValues(service, "error").Add(float64(stats.Failed))
}

func (m *PipelineMetrics) ObserveOrganized(service, category string) {
	m.organizedTotal.WithLabelValues(service, category).Inc()
}

// Serve exposes the metrics endpoint on addr; it blocks like
// http.ListenAndServe.
func (m *PipelineMetrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
