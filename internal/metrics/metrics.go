// Package metrics holds the Prometheus collectors for graph store
// mutations, expression evaluation, replica broadcast, the persistence
// bridge and the broadcast relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/graphkit/internal/graphstore"
)

// Collector holds all Prometheus metrics for one process. Each collector
// owns its registry, so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	Mutations     *prometheus.CounterVec
	Evaluations   *prometheus.CounterVec
	Broadcasts    *prometheus.CounterVec
	BridgeAttempt *prometheus.CounterVec
	BridgeCommit  *prometheus.HistogramVec
	RelayMessages *prometheus.CounterVec
}

// NewCollector creates and registers every collector under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_mutations_total",
				Help:      "Total number of applied graph store mutations",
			},
			[]string{"op", "suppressed"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expression_evaluations_total",
				Help:      "Total number of expression evaluations by outcome",
			},
			[]string{"outcome"},
		),
		Broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcast_ops_total",
				Help:      "Total number of broadcast ops sent or received",
			},
			[]string{"direction", "op", "status"},
		),
		BridgeAttempt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_attempts_total",
				Help:      "Total number of database transaction attempts by outcome",
			},
			[]string{"outcome"},
		),
		BridgeCommit: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bridge_commit_duration_seconds",
				Help:      "Time spent persisting one diff, retries included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		RelayMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relay_messages_total",
				Help:      "Total number of relay events by kind",
			},
			[]string{"event"},
		),
	}
	c.registry.MustRegister(
		c.Mutations,
		c.Evaluations,
		c.Broadcasts,
		c.BridgeAttempt,
		c.BridgeCommit,
		c.RelayMessages,
	)
	return c
}

// Registry returns the registry the collectors are registered with.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveMutation implements graphstore.Observer.
func (c *Collector) ObserveMutation(op graphstore.OpName, suppressed bool) {
	c.Mutations.WithLabelValues(string(op), strconv.FormatBool(suppressed)).Inc()
}

// ObserveEvaluation implements expr.Observer.
func (c *Collector) ObserveEvaluation(outcome string) {
	c.Evaluations.WithLabelValues(outcome).Inc()
}

// ObserveBroadcast implements replica.Observer.
func (c *Collector) ObserveBroadcast(direction string, op graphstore.OpName, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Broadcasts.WithLabelValues(direction, string(op), status).Inc()
}

// ObserveAttempt implements bridge.Metrics.
func (c *Collector) ObserveAttempt(outcome string) {
	c.BridgeAttempt.WithLabelValues(outcome).Inc()
}

// ObserveCommit implements bridge.Metrics.
func (c *Collector) ObserveCommit(outcome string, elapsed time.Duration) {
	c.BridgeCommit.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRelayMessage counts relay traffic.
func (c *Collector) ObserveRelayMessage(event string) {
	c.RelayMessages.WithLabelValues(event).Inc()
}
