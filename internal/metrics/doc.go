// Package metrics records build and dev-server metrics.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics cost nothing unless `serve --metrics` swaps in a
// PrometheusRecorder.
package metrics
