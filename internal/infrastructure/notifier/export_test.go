package notifier

import "github.com/prometheus/client_golang/prometheus"

func (m *Metrics) Events() *prometheus.CounterVec { return m.events }
func (m *Metrics) Units() *prometheus.CounterVec  { return m.units }
func (m *Metrics) Spent() prometheus.Gauge         { return m.spent }
func (m *Metrics) Running() prometheus.Gauge       { return m.running }
func (m *Metrics) Abandoned() prometheus.Counter   { return m.abandoned }
