// Package metrics exposes Prometheus counters for firewall rule and
// chain operations so agents embedding the core can track how much
// packet-filter churn each setup/teardown/reload produces.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all firewall metrics.
type Registry struct {
	// Rule/chain churn
	ChainsCreated *prometheus.CounterVec
	ChainsDeleted *prometheus.CounterVec
	RulesTotal    *prometheus.CounterVec

	// Replay outcomes
	ReloadTotal *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.ChainsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netavark_firewall_chains_created_total",
		Help: "Chains created in the packet filter, by table",
	}, []string{"table"})

	r.ChainsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netavark_firewall_chains_deleted_total",
		Help: "Chains flushed and deleted from the packet filter, by table",
	}, []string{"table"})

	r.RulesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netavark_firewall_rules_total",
		Help: "Rules added to or removed from the packet filter",
	}, []string{"table", "op"})

	r.ReloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netavark_firewall_reload_total",
		Help: "Firewall config replay outcomes",
	}, []string{"result"})

	return r
}

// RuleAdded records a rule appended or inserted into table.
func (r *Registry) RuleAdded(table string) {
	r.RulesTotal.WithLabelValues(table, "add").Inc()
}

// RuleRemoved records a rule deleted from table.
func (r *Registry) RuleRemoved(table string) {
	r.RulesTotal.WithLabelValues(table, "remove").Inc()
}
