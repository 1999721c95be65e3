package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// playoutsTotal counts simulated playouts by search phase
	playoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsearch_playouts_total",
		Help: "Total simulated playouts by search phase",
	}, []string{"searcher", "phase"})

	// fullPlayoutsTotal counts playouts that reached the end of the game
	fullPlayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsearch_full_playouts_total",
		Help: "Total playouts that ended the game before the cutoff",
	}, []string{"searcher"})

	// candidatesTotal counts generated candidate actions
	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsearch_candidates_total",
		Help: "Total distinct candidate actions generated",
	}, []string{"searcher"})

	// halvingRoundsTotal counts sequential halving rounds
	halvingRoundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsearch_halving_rounds_total",
		Help: "Total sequential halving rounds",
	}, []string{"searcher"})

	// memberFailuresTotal counts discarded ensemble members
	memberFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardsearch_member_failures_total",
		Help: "Total ensemble members discarded because their search failed",
	}, []string{"searcher"})

	// searchDuration tracks the duration of one decision
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardsearch_search_duration_seconds",
		Help:    "Search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"searcher"})
)

// promCollector counts into a regular collector and mirrors every update to
// the process wide prometheus metrics.
type promCollector struct {
	collector
}

func NewPrometheusCollector() Collector {
	return &promCollector{}
}

func (m *promCollector) AddGeneration() {
	m.collector.AddGeneration()
	playoutsTotal.WithLabelValues(m.searcher, "generation").Inc()
}

func (m *promCollector) AddEvaluation() {
	m.collector.AddEvaluation()
	playoutsTotal.WithLabelValues(m.searcher, "evaluation").Inc()
}

func (m *promCollector) AddEpisode() {
	m.collector.AddEpisode()
	playoutsTotal.WithLabelValues(m.searcher, "episode").Inc()
}

func (m *promCollector) AddFullPlayout() {
	m.collector.AddFullPlayout()
	fullPlayoutsTotal.WithLabelValues(m.searcher).Inc()
}

func (m *promCollector) AddCandidates(n int) {
	m.collector.AddCandidates(n)
	candidatesTotal.WithLabelValues(m.searcher).Add(float64(n))
}

func (m *promCollector) AddRounds(n int) {
	m.collector.AddRounds(n)
	halvingRoundsTotal.WithLabelValues(m.searcher).Add(float64(n))
}

func (m *promCollector) AddFailure() {
	m.collector.AddFailure()
	memberFailuresTotal.WithLabelValues(m.searcher).Inc()
}

func (m *promCollector) Complete() SearchMetric {
	metric := m.collector.Complete()
	searchDuration.WithLabelValues(metric.Searcher).Observe(metric.Duration.Seconds())
	return metric
}
