// Package metrics exposes engine lifecycle counters to Prometheus.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// Metrics holds the collectors fed by engine lifecycle hooks.
type Metrics struct {
	nodeVisits   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	interrupts   *prometheus.CounterVec
	turns        *prometheus.CounterVec
	turnHops     prometheus.Histogram

	mu      sync.Mutex
	entered map[string]time.Time
}

// New builds the collectors and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer for the standard /metrics endpoint.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_node_visits_total",
			Help: "Total number of graph node executions",
		}, []string{"node"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agent_node_duration_seconds",
			Help:    "Wall time spent inside each graph node",
			Buckets: prometheus.DefBuckets,
		}, []string{"node"}),
		interrupts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_interrupts_total",
			Help: "Turns suspended waiting on a user decision",
		}, []string{"kind"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Completed turns by disposition",
		}, []string{"disposition"}),
		turnHops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agent_turn_hops",
			Help:    "Node hops consumed by a single turn",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 25},
		}),
		entered: make(map[string]time.Time),
	}
	reg.MustRegister(m.nodeVisits, m.nodeDuration, m.interrupts, m.turns, m.turnHops)
	return m
}

// Hooks adapts the collectors to the engine's lifecycle callbacks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.Node).Inc()
			m.mu.Lock()
			m.entered[e.ThreadID+"/"+e.Node] = e.Timestamp
			m.mu.Unlock()
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			key := e.ThreadID + "/" + e.Node
			m.mu.Lock()
			start, ok := m.entered[key]
			delete(m.entered, key)
			m.mu.Unlock()
			if ok {
				m.nodeDuration.WithLabelValues(e.Node).Observe(e.Timestamp.Sub(start).Seconds())
			}
		},
		OnInterrupt: func(_ context.Context, e *domain.InterruptEvent) {
			m.interrupts.WithLabelValues(string(e.Kind)).Inc()
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(e.Disposition).Inc()
			m.turnHops.Observe(float64(e.Hops))
		},
	}
}
