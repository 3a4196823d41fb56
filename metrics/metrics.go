package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsStarted prometheus.Counter
	ResultsFetched  prometheus.Counter
	Reconciliations *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on the given registerer; tests pass
// a fresh registry so repeated construction doesn't collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "verification_sessions_started_total",
			Help: "Total number of provider verification sessions started",
		}),
		ResultsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "verification_results_fetched_total",
			Help: "Total number of extraction results fetched from the provider",
		}),
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_reconciliations_total",
			Help: "Total number of reconciliations rendered, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementResultsFetched() {
	m.ResultsFetched.Inc()
}

func (m *Metrics) ObserveReconciliation(passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.Reconciliations.WithLabelValues(outcome).Inc()
}
