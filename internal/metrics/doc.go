// Package metrics defines observability hooks for the update engine and the
// daemon loop. NoopRecorder is the default; PrometheusRecorder is used when the
// daemon is started with a metrics address.
package metrics
