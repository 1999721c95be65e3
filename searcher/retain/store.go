package retain

import (
	"maps"
	"slices"
	"sync"

	"cardsearch/searcher"
)

// Store keeps decision statistics across turns. Searches read a snapshot and
// hand their fresh statistics back through Merge once they have all finished,
// so the store has a single writer per decision.
//
// Statistics are partitioned by the player who searched them. Rewards are
// scored from the searching player's seat, so one player's values say nothing
// about the same decision made by the other.
type Store struct {
	mu      sync.RWMutex
	tables  map[int]*searcher.WeightTable
	version uint64
	decay   float64
}

// NewStore returns an empty store. Before every merge existing statistics of
// the merging player are scaled by decay; 1 keeps them forever.
func NewStore(decay float64) *Store {
	if decay <= 0 || decay > 1 {
		panic("decay must be in (0, 1]")
	}
	return &Store{
		tables: map[int]*searcher.WeightTable{},
		decay:  decay,
	}
}

// Snapshot returns a copy of the player's statistics and the version it was
// taken at.
func (s *Store) Snapshot(player int) (*searcher.WeightTable, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[player]
	if !ok {
		return searcher.NewWeightTable(), s.version
	}
	return table.Clone(), s.version
}

// Merge adds the tables to the player's statistics and returns the new
// version.
func (s *Store) Merge(player int, tables ...*searcher.WeightTable) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[player]
	if !ok {
		table = searcher.NewWeightTable()
		s.tables[player] = table
	}
	if s.decay < 1 {
		table.Scale(s.decay)
	}
	for _, t := range tables {
		table.Merge(t)
	}
	s.version++
	return s.version
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Len counts the statistics of all players.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, table := range s.tables {
		n += table.Len()
	}
	return n
}

// Players lists the players with statistics in ascending order.
func (s *Store) Players() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.tables))
}

// Restore replaces the contents of the store.
func (s *Store) Restore(tables map[int]*searcher.WeightTable, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = make(map[int]*searcher.WeightTable, len(tables))
	for player, table := range tables {
		s.tables[player] = table.Clone()
	}
	s.version = version
}
