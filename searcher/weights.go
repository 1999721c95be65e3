package searcher

import (
	"fmt"
	"slices"

	"cardsearch/game"
)

// Stat accumulates the credited value of one decision.
type Stat struct {
	Value  float64
	Visits int
}

func (s Stat) Mean() float64 {
	if s.Visits == 0 {
		return 0
	}
	return s.Value / float64(s.Visits)
}

// WeightTable maps canonical decision signatures to their accumulated value.
// It is not safe for concurrent use; each search owns its table.
type WeightTable struct {
	stats map[game.Signature]Stat
}

func NewWeightTable() *WeightTable {
	return &WeightTable{stats: make(map[game.Signature]Stat)}
}

// Credit adds score to the entry of every distinct decision in action.
func (t *WeightTable) Credit(action game.CombinedAction, score float64) {
	seen := make(map[game.Signature]bool, len(action))
	for _, d := range action {
		sig := d.Canonical()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		t.Add(sig, Stat{Value: score, Visits: 1})
	}
}

func (t *WeightTable) Add(sig game.Signature, stat Stat) {
	s := t.stats[sig]
	s.Value += stat.Value
	s.Visits += stat.Visits
	t.stats[sig] = s
}

func (t *WeightTable) Get(sig game.Signature) (Stat, bool) {
	s, ok := t.stats[sig]
	return s, ok
}

func (t *WeightTable) Set(sig game.Signature, stat Stat) {
	t.stats[sig] = stat
}

func (t *WeightTable) Len() int {
	return len(t.stats)
}

// Signatures returns the keys in ascending order so that anything built from
// the table is reproducible.
func (t *WeightTable) Signatures() []game.Signature {
	keys := make([]game.Signature, 0, len(t.stats))
	for sig := range t.stats {
		keys = append(keys, sig)
	}
	slices.Sort(keys)
	return keys
}

// Merge adds the statistics of other into t.
func (t *WeightTable) Merge(other *WeightTable) {
	if other == nil {
		return
	}
	for sig, stat := range other.stats {
		t.Add(sig, stat)
	}
}

// Scale multiplies every value and visit count by factor, dropping entries
// whose visits fall to zero.
func (t *WeightTable) Scale(factor float64) {
	for sig, stat := range t.stats {
		visits := int(float64(stat.Visits) * factor)
		if visits <= 0 {
			delete(t.stats, sig)
			continue
		}
		// Keep the mean unchanged
		t.stats[sig] = Stat{Value: stat.Mean() * float64(visits), Visits: visits}
	}
}

func (t *WeightTable) Clone() *WeightTable {
	c := &WeightTable{stats: make(map[game.Signature]Stat, len(t.stats))}
	for sig, stat := range t.stats {
		c.stats[sig] = stat
	}
	return c
}

// Sampler builds an alias table weighted by mean credited value. When every
// observed decision has a zero mean, all of them are weighted equally.
func (t *WeightTable) Sampler() (*Sampler[game.Signature], error) {
	if len(t.stats) == 0 {
		return nil, ErrEmptySampler
	}
	sampler := NewSampler[game.Signature]()
	keys := t.Signatures()
	total := 0.0
	for _, sig := range keys {
		mean := max(t.stats[sig].Mean(), 0)
		total += mean
		if err := sampler.Add(sig, mean, false); err != nil {
			return nil, fmt.Errorf("failed to build sampler: %w", err)
		}
	}
	if total <= 0 {
		for _, sig := range keys {
			_ = sampler.Add(sig, 1, false)
		}
	}
	if err := sampler.Recalculate(); err != nil {
		return nil, fmt.Errorf("failed to build sampler: %w", err)
	}
	return sampler, nil
}
