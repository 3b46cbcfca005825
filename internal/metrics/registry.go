// Package metrics backs the "statistics" component of
// saturation.Environment (spec §9: threaded explicitly, never a global).
// Grounded on operator-framework-operator-lifecycle-manager's
// pkg/metrics package shape (named collectors held on a struct, registered
// once at construction) but registered against a private
// *prometheus.Registry rather than prometheus.DefaultRegisterer, so that
// multiple saturation runs in one process (e.g. a test suite) never
// collide on global collector registration.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the counters/gauges/histogram of spec §1.7: clauses
// generated per rule, clause container sizes, given-clause selection
// latency, and node promotions. The saturation loop updates
// ClausesGenerated, the "passive" and "active" ContainerSize gauges and
// SelectionLatency; nothing in this module increments NodePromotions or
// sets an "unprocessed" size.
type Registry struct {
	reg *prometheus.Registry

	ClausesGenerated *prometheus.CounterVec
	ContainerSize    *prometheus.GaugeVec
	SelectionLatency prometheus.Histogram
	NodePromotions   prometheus.Counter
}

// New builds and registers a fresh Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		ClausesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_clauses_generated_total",
			Help: "Clauses produced by each generating rule.",
		}, []string{"rule"}),
		ContainerSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "saturn_container_size",
			Help: "Current size of each clause container.",
		}, []string{"container"}),
		SelectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "saturn_given_clause_selection_seconds",
			Help:    "Latency of selecting the next given clause from Passive.",
			Buckets: prometheus.DefBuckets,
		}),
		NodePromotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saturn_index_node_promotions_total",
			Help: "Child-collection representation promotions (array->list->skip-list).",
		}),
	}
	reg.MustRegister(r.ClausesGenerated, r.ContainerSize, r.SelectionLatency, r.NodePromotions)
	return r
}

// Gatherer exposes the underlying registry for an HTTP /metrics handler
// (wired by the out-of-scope CLI collaborator, not by this package).
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
