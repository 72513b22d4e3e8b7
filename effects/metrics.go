package effects

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "records_effects"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeEmpty   = "empty"
)

type metrics struct {
	nodes   *prometheus.CounterVec
	commits *prometheus.CounterVec
	remote  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "nodes_total",
			Help:      "The number of evaluated effect nodes by kind.",
		}, []string{"kind"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commits_total",
			Help:      "The number of evaluated commits by outcome.",
		}, []string{"outcome"}),
		remote: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "remote_calls_total",
			Help:      "The number of backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	reg.MustRegister(m.nodes, m.commits, m.remote)
	return m
}

// The methods below accept a nil receiver, which records nothing.

func (m *metrics) node(k Kind) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(string(k)).Inc()
}

func (m *metrics) commit(outcome string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
}

func (m *metrics) remoteCall(k Kind, failed bool) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if failed {
		outcome = outcomeFailure
	}
	m.remote.WithLabelValues(string(k), outcome).Inc()
}
