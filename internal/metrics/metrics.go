// Package metrics collects per-run counters for a batch and writes them in
// the Prometheus text format, for pickup by node_exporter's textfile
// collector. Each Recorder owns its registry, so nothing is global.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job outcomes used as the "outcome" label.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Recorder holds the batch metrics.
type Recorder struct {
	registry *prometheus.Registry

	jobs            *prometheus.CounterVec
	framesExtracted prometheus.Counter
	toolRuns        *prometheus.CounterVec
	toolSeconds     *prometheus.HistogramVec
	jobSeconds      prometheus.Histogram
	outputBytes     prometheus.Counter
	lastRun         prometheus.Gauge
}

// NewRecorder creates a Recorder with all series registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rawflow_jobs_total",
			Help: "Input files handled in this run, by outcome",
		}, []string{"outcome"}),
		framesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rawflow_frames_extracted_total",
			Help: "DNG frames extracted in this run",
		}),
		toolRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rawflow_tool_runs_total",
			Help: "External tool invocations, by tool and result",
		}, []string{"tool", "result"}),
		toolSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rawflow_tool_duration_seconds",
			Help:    "Wall time of external tool invocations",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"tool"}),
		jobSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rawflow_job_duration_seconds",
			Help:    "Wall time per processed input file",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		outputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rawflow_output_bytes_total",
			Help: "Bytes written to result directories in this run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rawflow_last_run_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
	r.registry.MustRegister(r.jobs, r.framesExtracted, r.toolRuns, r.toolSeconds,
		r.jobSeconds, r.outputBytes, r.lastRun)
	return r
}

// Job records one input file's outcome. d is only observed for processed jobs.
func (r *Recorder) Job(outcome string, d time.Duration) {
	r.jobs.WithLabelValues(outcome).Inc()
	if outcome == OutcomeProcessed {
		r.jobSeconds.Observe(d.Seconds())
	}
}

// Frames adds n extracted frames.
func (r *Recorder) Frames(n int) {
	r.framesExtracted.Add(float64(n))
}

// ToolRun records one external tool invocation.
func (r *Recorder) ToolRun(tool string, ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.toolRuns.WithLabelValues(tool, result).Inc()
	r.toolSeconds.WithLabelValues(tool).Observe(d.Seconds())
}

// OutputBytes adds n bytes written.
func (r *Recorder) OutputBytes(n int64) {
	if n > 0 {
		r.outputBytes.Add(float64(n))
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile stamps the finish time and writes all series to path.
// The write is atomic (temp file + rename) so a collector never reads a
// half-written file.
func (r *Recorder) WriteTextfile(path string, finished time.Time) error {
	r.lastRun.Set(float64(finished.Unix()))
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
