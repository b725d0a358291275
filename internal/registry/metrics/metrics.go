package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the role registry.
type Metrics struct {
	Mutations *prometheus.CounterVec
	Members   *prometheus.GaugeVec
}

// New creates and registers all role registry metrics.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_registry_mutations_total",
			Help: "Total successful role membership mutations by role and action",
		}, []string{"role", "action"}),
		Members: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "concord_registry_members",
			Help: "Current member count per role",
		}, []string{"role"}),
	}
}

// IncrementMutation records one successful mutation.
func (m *Metrics) IncrementMutation(role, action string) {
	m.Mutations.WithLabelValues(role, action).Inc()
}

// SetMembers records the current member count for a role.
func (m *Metrics) SetMembers(role string, count int) {
	m.Members.WithLabelValues(role).Set(float64(count))
}
