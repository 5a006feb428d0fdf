// Package metrics declares the Prometheus instruments of the scorer and the
// handler for the optional /metrics endpoint.
package metrics
