// Package metrics provides the enclave's metric registry. It wraps
// github.com/prometheus/client_golang so every subsystem records through a
// single CollectorRegistry, mirroring the create_counter/create_gauge/expose
// shape of the Rust prometheus registry this module replaces.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace is prepended to every metric name registered through this package.
const Namespace = "sgx_prover"

// CollectorRegistry owns a dedicated prometheus.Registry and constructs
// namespaced counters and gauges on demand, deduplicating by name so
// repeated calls with the same name/subsystem return the existing collector.
type CollectorRegistry struct {
	reg      *prometheus.Registry
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
}

// NewCollectorRegistry builds an empty registry with Go runtime/process
// collectors pre-registered, matching what client_golang provides by default.
func NewCollectorRegistry() *CollectorRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return &CollectorRegistry{
		reg:      reg,
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

func metricKey(subsystem, name string) string { return subsystem + "_" + name }

// CreateCounter returns a labeled counter vector, creating it on first use.
func (r *CollectorRegistry) CreateCounter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	key := metricKey(subsystem, name)
	if c, ok := r.counters[key]; ok {
		return c
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)
	r.counters[key] = c
	return c
}

// CreateGauge returns a labeled gauge vector, creating it on first use.
func (r *CollectorRegistry) CreateGauge(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
	key := metricKey(subsystem, name)
	if g, ok := r.gauges[key]; ok {
		return g
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(g)
	r.gauges[key] = g
	return g
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *CollectorRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Registerer exposes the underlying prometheus.Registerer for components
// that want to register their own collectors directly (e.g. a custom
// Collector implementation rather than a counter/gauge pair).
func (r *CollectorRegistry) Registerer() prometheus.Registerer { return r.reg }
