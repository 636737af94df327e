package web

import (
	"net/http"

	"github.com/callebjorkell/musicbox/box"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports controller activity on /metrics. Each instance owns its
// registry so tests can spin up as many as they like.
type Metrics struct {
	registry *prom.Registry
	actions  *prom.CounterVec
	idle     prom.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		actions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "musicbox",
			Name:      "actions_total",
			Help:      "Handled card taps by resulting action",
		}, []string{"action"}),
		idle: prom.NewCounter(prom.CounterOpts{
			Namespace: "musicbox",
			Name:      "idle_polls_total",
			Help:      "Reader polls that saw no new card",
		}),
	}
	m.registry.MustRegister(m.actions, m.idle)
	m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) RecordAction(action box.Action) {
	m.actions.WithLabelValues(action.Kind.String()).Inc()
}

func (m *Metrics) RecordIdle() {
	m.idle.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
