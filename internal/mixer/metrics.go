package mixer

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an Observer that exports device activity to Prometheus.
type Metrics struct {
	active      prometheus.Gauge
	transitions *prometheus.CounterVec
}

// NewMetrics creates the device collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "paintmixer",
			Name:      "active_jobs",
			Help:      "Jobs currently queued or running.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paintmixer",
			Name:      "job_events_total",
			Help:      "Job lifecycle events by stage.",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.active, m.transitions)
	return m
}

func (m *Metrics) Observe(e Event) {
	m.transitions.WithLabelValues(string(e.Stage)).Inc()
	switch e.Stage {
	case StageQueued:
		m.active.Inc()
	case StageCompleted, StageCanceled:
		m.active.Dec()
	}
}
