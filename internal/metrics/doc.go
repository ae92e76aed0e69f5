// Package metrics records build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless enabled:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	pipeline := build.NewPipeline(cfg, build.WithRecorder(recorder))
//
// A build is a short-lived process, so Prometheus metrics are exported by
// writing the registry to a textfile (see WriteTextfile) for node_exporter's
// textfile collector rather than served over HTTP.
package metrics
