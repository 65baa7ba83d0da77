// Package metrics exposes the process-wide Prometheus registry at
// GET /metrics, including the server lifecycle metrics.
package metrics
