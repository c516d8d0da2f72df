// Package metrics implements the Orchestrator's operational metrics:
// per-segment timing histograms, job-state gauges, and an embedder-fallback
// counter for the lexical-similarity degradation path (§7 EmbeddingTransient
// after exhausted retries).
//
// The teacher's internal/metrics package recorded per-LLM-call cost and
// token counts into DefraDB; nothing in this system bills per token or
// tracks providers, so that shape has no home here. Re-grounded instead on
// jordigilh-kubernaut's use of github.com/prometheus/client_golang
// (CounterVec/HistogramVec/GaugeVec registered against a *prometheus.Registry
// and scraped, rather than queried back out of a document store).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the UCC process's Prometheus collectors. The zero value is
// not usable; construct with NewRecorder.
type Recorder struct {
	registry *prometheus.Registry

	jobDuration     prometheus.Histogram
	segmentDuration *prometheus.HistogramVec
	jobsByStatus    *prometheus.GaugeVec
	retries         *prometheus.CounterVec
	embedderFallback prometheus.Counter
}

// NewRecorder creates a Recorder and registers its collectors against a
// fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ucc_job_duration_seconds",
			Help:    "End-to-end duration of a comparison job.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~2048s
		}),
		segmentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ucc_segment_duration_seconds",
			Help:    "Duration of a single pipeline segment.",
			Buckets: prometheus.DefBuckets,
		}, []string{"segment"}),
		jobsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ucc_jobs_in_status",
			Help: "Current number of jobs in each status.",
		}, []string{"status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ucc_segment_retries_total",
			Help: "Total number of transient-error segment retries.",
		}, []string{"segment"}),
		embedderFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ucc_embedder_fallback_total",
			Help: "Total number of jobs that fell back to lexical-only similarity after embedder retries were exhausted.",
		}),
	}

	reg.MustRegister(r.jobDuration, r.segmentDuration, r.jobsByStatus, r.retries, r.embedderFallback)
	return r
}

// Registry exposes the underlying registry so the HTTP layer can serve it
// via promhttp.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveJobDuration records one completed job's wall-clock duration.
func (r *Recorder) ObserveJobDuration(d time.Duration) {
	r.jobDuration.Observe(d.Seconds())
}

// ObserveSegmentDuration records one segment's wall-clock duration.
func (r *Recorder) ObserveSegmentDuration(segmentName string, d time.Duration) {
	r.segmentDuration.WithLabelValues(segmentName).Observe(d.Seconds())
}

// SetJobsInStatus sets the current gauge value for a status bucket. Callers
// recompute this periodically from JobStore.List rather than incrementally,
// since job status transitions happen across goroutines.
func (r *Recorder) SetJobsInStatus(status string, count int) {
	r.jobsByStatus.WithLabelValues(status).Set(float64(count))
}

// IncRetry records one transient-error retry attempt for a segment.
func (r *Recorder) IncRetry(segmentName string) {
	r.retries.WithLabelValues(segmentName).Inc()
}

// IncEmbedderFallback records one job falling back to lexical similarity.
func (r *Recorder) IncEmbedderFallback() {
	r.embedderFallback.Inc()
}
