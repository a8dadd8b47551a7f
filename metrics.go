package devtools

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge collectors. A nil *Metrics records nothing.
type Metrics struct {
	ActionsSent       prometheus.Counter
	ActionsDropped    *prometheus.CounterVec
	ConnectionsOpened prometheus.Counter
	RegisteredStores  prometheus.Gauge
}

// NewMetrics builds collectors and registers them on reg. Collectors already
// registered on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ActionsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devtools",
			Name:      "actions_sent_total",
			Help:      "Actions forwarded to the debugger connection.",
		}),
		ActionsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devtools",
			Name:      "actions_dropped_total",
			Help:      "Actions not forwarded, by reason.",
		}, []string{"reason"}),
		ConnectionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devtools",
			Name:      "connections_opened_total",
			Help:      "Debugger connections opened.",
		}),
		RegisteredStores: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devtools",
			Name:      "registered_stores",
			Help:      "Stores currently registered with the bridge.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.ActionsSent = registerOrReuse(reg, m.ActionsSent, &err)
	m.ActionsDropped = registerOrReuse(reg, m.ActionsDropped, &err)
	m.ConnectionsOpened = registerOrReuse(reg, m.ConnectionsOpened, &err)
	m.RegisteredStores = registerOrReuse(reg, m.RegisteredStores, &err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, collector C, errp *error) C {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		*errp = errors.Join(*errp, err)
	}
	return collector
}

func (m *Metrics) sent() {
	if m == nil {
		return
	}
	m.ActionsSent.Inc()
}

func (m *Metrics) dropped(reason string) {
	if m == nil {
		return
	}
	m.ActionsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) opened() {
	if m == nil {
		return
	}
	m.ConnectionsOpened.Inc()
}

func (m *Metrics) stores(n int) {
	if m == nil {
		return
	}
	m.RegisteredStores.Set(float64(n))
}
