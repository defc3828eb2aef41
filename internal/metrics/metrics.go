// Package metrics exposes Prometheus collectors for simulations and sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/copyleftdev/SARSIM/internal/search"
)

// Metrics holds the simulator collectors.
type Metrics struct {
	trials            *prometheus.CounterVec
	roundsToFind      *prometheus.HistogramVec
	simulationsActive prometheus.Gauge
	sessionsActive    prometheus.Gauge
	sessionRounds     prometheus.Counter
}

// New registers the collectors with reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sarsim_trials_total",
			Help: "Completed Monte Carlo trials",
		}, []string{"strategy"}),
		roundsToFind: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sarsim_rounds_to_find",
			Help:    "Rounds needed to find the target per trial",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30, 50},
		}, []string{"strategy"}),
		simulationsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sarsim_simulations_active",
			Help: "Simulation jobs currently running",
		}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sarsim_sessions_active",
			Help: "Interactive search sessions currently open",
		}),
		sessionRounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "sarsim_session_rounds_total",
			Help: "Rounds played in interactive sessions",
		}),
	}
}

// ObserveTrial implements montecarlo.Recorder.
func (m *Metrics) ObserveTrial(strategy search.Strategy, rounds int) {
	label := strategy.String()
	m.trials.WithLabelValues(label).Inc()
	m.roundsToFind.WithLabelValues(label).Observe(float64(rounds))
}

// SimulationStarted marks a simulation job as running.
func (m *Metrics) SimulationStarted() { m.simulationsActive.Inc() }

// SimulationFinished marks a simulation job as done, whatever its outcome.
func (m *Metrics) SimulationFinished() { m.simulationsActive.Dec() }

// SessionOpened counts a new interactive session.
func (m *Metrics) SessionOpened() { m.sessionsActive.Inc() }

// SessionClosed counts a session being dropped.
func (m *Metrics) SessionClosed() { m.sessionsActive.Dec() }

// SessionRound counts one interactive round.
func (m *Metrics) SessionRound() { m.sessionRounds.Inc() }
