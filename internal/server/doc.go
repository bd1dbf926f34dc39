// Package server exposes the classification pipeline over HTTP.
//
//	POST /url      classify a capture session, 201 with the verdict record
//	GET  /healthz  liveness probe
//	GET  /metrics  Prometheus metrics
//
// Verdicts are optionally stored in the history database.
package server
