package notifier

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"trade_pilot/internal/domain/entity"
)

const namespace = "trade_pilot"

// Metrics turns the event stream into prometheus series.
type Metrics struct {
	events    *prometheus.CounterVec
	units     *prometheus.CounterVec
	spent     prometheus.Gauge
	income    prometheus.Gauge
	running   prometheus.Gauge
	abandoned prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Session events by kind.",
		}, []string{"mode", "kind"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Units bought or sold.",
		}, []string{"mode", "side"}),
		spent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_spent",
			Help:      "Currency committed by the current session.",
		}),
		income: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "income",
			Help:      "Net sale income of the current session.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_running",
			Help:      "1 while a session is active.",
		}),
		abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_abandoned_total",
			Help:      "Items left without completing.",
		}),
	}

	reg.MustRegister(m.events, m.units, m.spent, m.income, m.running, m.abandoned)

	return m
}

func (m *Metrics) Run(ctx context.Context, events <-chan entity.Event) error {
	return drain(ctx, events, "metrics observe", func(_ context.Context, e entity.Event) error {
		m.Observe(e)
		return nil
	})
}

func (m *Metrics) Observe(e entity.Event) {
	mode := e.Mode.String()

	m.events.WithLabelValues(mode, string(e.Kind)).Inc()
	m.spent.Set(float64(e.Spent))
	m.income.Set(float64(e.Income))

	switch e.Kind {
	case entity.EventSessionStarted:
		m.running.Set(1)
	case entity.EventSessionFinished:
		m.running.Set(0)
	case entity.EventPurchase:
		m.units.WithLabelValues(mode, "buy").Add(float64(e.Quantity))
	case entity.EventSale:
		m.units.WithLabelValues(mode, "sell").Add(float64(e.Quantity))
	case entity.EventItemAbandoned:
		m.abandoned.Inc()
	}
}
