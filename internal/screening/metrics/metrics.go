package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for screening runs and hold updates.
type Metrics struct {
	RunDuration  prometheus.Histogram
	MatchesTotal *prometheus.CounterVec
	LastRunSize  prometheus.Gauge
	HoldUpdates  prometheus.Counter
}

// New creates the screening metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rpscreen_screening_run_duration_seconds",
			Help:    "Duration of screening runs including persistence",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MatchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rpscreen_screening_matches_total",
			Help: "Matches produced by screening runs, by match type",
		}, []string{"match_type"}),
		LastRunSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "rpscreen_screening_last_run_matches",
			Help: "Number of matches in the current match list",
		}),
		HoldUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "rpscreen_screening_hold_updates_total",
			Help: "Total hold type updates",
		}),
	}
}

// ObserveRun records a finished run.
// Call with time.Now() captured at the start of the run.
func (m *Metrics) ObserveRun(start time.Time, byType map[string]int) {
	m.RunDuration.Observe(time.Since(start).Seconds())
	total := 0
	for matchType, n := range byType {
		m.MatchesTotal.WithLabelValues(matchType).Add(float64(n))
		total += n
	}
	m.LastRunSize.Set(float64(total))
}

func (m *Metrics) IncrementHoldUpdated() {
	m.HoldUpdates.Inc()
}
