package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Searcher     string
	Members      int
	Duration     time.Duration
	Generations  int // Side information playouts
	Evaluations  int // Sequential halving playouts
	Episodes     int // Tree search iterations
	FullPlayouts int
	Candidates   int
	Rounds       int
	Failures     int // Discarded ensemble members
}

type MoveMetric struct {
	Turn      int
	Player    int // Player ID
	Decisions int
	Illegal   int // Decisions replaced by the engine
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Player ID, 0 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalTurns     int
}

// Collector gathers the metrics of one search. Counters may be updated from
// concurrent ensemble members.
type Collector interface {
	Start(searcher string, members int)
	AddGeneration()
	AddEvaluation()
	AddEpisode()
	AddFullPlayout()
	AddCandidates(n int)
	AddRounds(n int)
	AddFailure()
	Complete() SearchMetric
}

type collector struct {
	searcher     string
	members      int
	startTime    time.Time
	generations  atomic.Int32
	evaluations  atomic.Int32
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	candidates   atomic.Int32
	rounds       atomic.Int32
	failures     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters.
func (m *collector) Start(searcher string, members int) {
	m.startTime = time.Now()
	m.searcher = searcher
	m.members = members
	m.generations.Store(0)
	m.evaluations.Store(0)
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.candidates.Store(0)
	m.rounds.Store(0)
	m.failures.Store(0)
}

func (m *collector) AddGeneration() {
	m.generations.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddCandidates(n int) {
	m.candidates.Add(int32(n))
}

func (m *collector) AddRounds(n int) {
	m.rounds.Add(int32(n))
}

func (m *collector) AddFailure() {
	m.failures.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Searcher:     m.searcher,
		Members:      m.members,
		Duration:     time.Since(m.startTime),
		Generations:  int(m.generations.Load()),
		Evaluations:  int(m.evaluations.Load()),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Candidates:   int(m.candidates.Load()),
		Rounds:       int(m.rounds.Load()),
		Failures:     int(m.failures.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(searcher string, members int) {}
func (m *dummyCollector) AddGeneration()                     {}
func (m *dummyCollector) AddEvaluation()                     {}
func (m *dummyCollector) AddEpisode()                        {}
func (m *dummyCollector) AddFullPlayout()                    {}
func (m *dummyCollector) AddCandidates(n int)                {}
func (m *dummyCollector) AddRounds(n int)                    {}
func (m *dummyCollector) AddFailure()                        {}
func (m *dummyCollector) Complete() SearchMetric             { return SearchMetric{} }
