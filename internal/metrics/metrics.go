package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zksupervisor"

// Collector records supervisor operations. It satisfies supervisor.Metrics.
type Collector struct {
	operations      *prometheus.CounterVec
	killAttempts    prometheus.Histogram
	killUnconfirmed prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Collector with its own registry. When withRuntime is true the
// Go runtime and process collectors are registered as well.
func New(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of supervisor operations by result",
			},
			[]string{"operation", "result"},
		),
		killAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "kill_attempts",
				Help:      "Kill attempts needed per KillInstance call that found a running server",
				Buckets:   []float64{1, 2, 3, 5, 8},
			},
		),
		killUnconfirmed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kill_unconfirmed_total",
				Help:      "Total number of kills after which the server was still listed",
			},
		),
	}

	c.registry.MustRegister(c.operations, c.killAttempts, c.killUnconfirmed)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// ObserveOperation counts one operation with its result.
func (c *Collector) ObserveOperation(operation, result string) {
	c.operations.WithLabelValues(operation, result).Inc()
}

// ObserveKill records the attempts one kill needed and whether it was
// confirmed.
func (c *Collector) ObserveKill(attempts int, confirmed bool) {
	c.killAttempts.Observe(float64(attempts))
	if !confirmed {
		c.killUnconfirmed.Inc()
	}
}

// Registry returns the registry the collector's metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
