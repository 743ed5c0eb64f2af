// Package metrics holds the Prometheus instruments for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/detective-engine/pkg/scoring"
	"github.com/jwebster45206/detective-engine/pkg/state"
)

const namespace = "detective"

type Metrics struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	unlocks        *prometheus.CounterVec
	contradictions *prometheus.CounterVec
	gamesCreated   *prometheus.CounterVec
	scores         *prometheus.HistogramVec
	httpDuration   *prometheus.HistogramVec
}

// New registers every instrument on a fresh registry, so tests and multiple
// servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: type (wire action type), outcome (applied, noop)
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "actions_total",
			Help:      "Actions dispatched to games",
		}, []string{"type", "outcome"}),

		unlocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "hypotheses_unlocked_total",
			Help:      "Tier 2 hypotheses unlocked",
		}, []string{"case_id"}),

		contradictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "contradictions_discovered_total",
			Help:      "Contradictions discovered",
		}, []string{"case_id"}),

		gamesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "created_total",
			Help:      "Games started",
		}, []string{"case_id"}),

		scores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "score",
			Help:      "Distribution of calculated reasoning scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"metric"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) ActionDispatched(t state.ActionType, changed bool) {
	outcome := "noop"
	if changed {
		outcome = "applied"
	}
	m.actions.WithLabelValues(string(t), outcome).Inc()
}

func (m *Metrics) HypothesesUnlocked(caseID string, n int) {
	if n > 0 {
		m.unlocks.WithLabelValues(caseID).Add(float64(n))
	}
}

func (m *Metrics) ContradictionsDiscovered(caseID string, n int) {
	if n > 0 {
		m.contradictions.WithLabelValues(caseID).Add(float64(n))
	}
}

func (m *Metrics) GameCreated(caseID string) {
	m.gamesCreated.WithLabelValues(caseID).Inc()
}

// ScoresCalculated records each metric of a finished report.
func (m *Metrics) ScoresCalculated(s scoring.PlayerScores) {
	for _, n := range s.Named() {
		m.scores.WithLabelValues(n.Name).Observe(float64(n.Score))
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
