package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the analysis collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	batchSize prometheus.Histogram
	discarded prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finance",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome and failure kind.",
		}, []string{"outcome", "failure_kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "finance",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Wall time of analysis runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120, 180},
		}, []string{"outcome"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finance",
			Subsystem: "analysis",
			Name:      "batch_transactions",
			Help:      "Transactions sent per analysis run.",
			Buckets:   prometheus.LinearBuckets(0, 10, 6),
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finance",
			Subsystem: "analysis",
			Name:      "discarded_duplicate_groups_total",
			Help:      "Model-claimed duplicate groups dropped by verification.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.batchSize, m.discarded)
	return m
}

func (m *Metrics) observe(res Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(res.Outcome), string(res.FailureKind)).Inc()
	m.duration.WithLabelValues(string(res.Outcome)).Observe(elapsed.Seconds())
	m.batchSize.Observe(float64(res.TransactionCount))
	if res.DiscardedDuplicateGroups > 0 {
		m.discarded.Add(float64(res.DiscardedDuplicateGroups))
	}
}
