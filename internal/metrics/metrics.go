package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Collectors are registered on the Registerer handed to New, never on the
global default registry, so tests can build as many instances as they need.

All observe methods accept a nil receiver, which lets components run without
metrics.
*/

// Vote outcomes recorded on VotesTotal.
const (
	OutcomeAccepted     = "accepted"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalid      = "invalid"
	OutcomeNoSession    = "no_session"
	OutcomeBackendError = "error"
)

type Metrics struct {
	VotesTotal          *prometheus.CounterVec
	SessionTransitions  *prometheus.CounterVec
	BackendRetries      prometheus.Counter
	BreakerTrips        prometheus.Counter
	AggregationDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Vote submissions by outcome",
			},
			[]string{"outcome"},
		),
		SessionTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Voting sessions opened and closed",
			},
			[]string{"status"},
		),
		BackendRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_retries_total",
			Help:      "Database calls retried after a transient error",
		}),
		BreakerTrips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_breaker_trips_total",
			Help:      "Times the database guard entered its cooldown window",
		}),
		AggregationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Time spent building results and analytics views",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
			},
			[]string{"view"},
		),
	}
}

func (m *Metrics) ObserveVote(outcome string) {
	if m == nil {
		return
	}
	m.VotesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSessionTransition(status string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.BackendRetries.Inc()
}

func (m *Metrics) ObserveBreakerTrip() {
	if m == nil {
		return
	}
	m.BreakerTrips.Inc()
}

// TimeAggregation returns a func that records the elapsed time for view.
//
//	defer m.TimeAggregation("results")()
func (m *Metrics) TimeAggregation(view string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.AggregationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	}
}
