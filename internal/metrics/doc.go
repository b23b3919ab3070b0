// Package metrics provides build and bootstrap metrics for fragy.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	b := build.New(dir, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server exposes the Prometheus registry at /metrics; one-shot
// builds from the CLI keep the NoopRecorder.
package metrics
