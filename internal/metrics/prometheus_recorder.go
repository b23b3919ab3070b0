package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	emittedFiles   *prom.CounterVec
	emittedBytes   *prom.CounterVec
	bootstrapState *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "fragy",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "fragy",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fragy",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fragy",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		emittedFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fragy",
			Name:      "emitted_files_total",
			Help:      "Files written to the build output by plugin",
		}, []string{"plugin"}),
		emittedBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fragy",
			Name:      "emitted_bytes_total",
			Help:      "Bytes written to the build output by plugin",
		}, []string{"plugin"}),
		bootstrapState: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fragy",
			Name:      "bootstrap_transitions_total",
			Help:      "Runtime bootstrap states reached",
		}, []string{"state"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.emittedFiles, pr.emittedBytes, pr.bootstrapState)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddEmitted(plugin string, files int, bytes int64) {
	if p == nil || p.emittedFiles == nil {
		return
	}
	p.emittedFiles.WithLabelValues(plugin).Add(float64(files))
	p.emittedBytes.WithLabelValues(plugin).Add(float64(bytes))
}

func (p *PrometheusRecorder) IncBootstrapState(state string) {
	if p == nil || p.bootstrapState == nil {
		return
	}
	p.bootstrapState.WithLabelValues(state).Inc()
}
