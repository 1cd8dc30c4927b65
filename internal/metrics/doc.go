// Package metrics exports supervisor operation outcomes as Prometheus
// metrics on a private registry.
package metrics
