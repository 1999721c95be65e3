package retain

import (
	"testing"

	"cardsearch/searcher"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestPersister(t *testing.T) {
	t.Run("saving and loading a store", func(t *testing.T) {
		p, err := Open("")
		require.NoError(t, err)
		defer p.Close()

		store := NewStore(1)
		store.Merge(1, tableOf(map[uint64]searcher.Stat{
			1:             {Value: 0.25, Visits: 3},
			0xfedcba98765: {Value: 7.5, Visits: 12},
		}))
		store.Merge(2, tableOf(map[uint64]searcher.Stat{1: {Value: 2, Visits: 5}}))
		require.NoError(t, p.Save(store))

		loaded := NewStore(1)
		require.NoError(t, p.Load(loaded))

		require.Equal(t, store.Version(), loaded.Version())
		require.Equal(t, []int{1, 2}, loaded.Players())
		for _, player := range []int{1, 2} {
			expected, _ := store.Snapshot(player)
			got, _ := loaded.Snapshot(player)
			require.Equal(t, expected, got, "Statistics of player %d should survive", player)
		}
	})

	t.Run("saving replaces earlier statistics", func(t *testing.T) {
		p, err := Open("")
		require.NoError(t, err)
		defer p.Close()

		first := NewStore(1)
		first.Merge(1, tableOf(map[uint64]searcher.Stat{1: {Value: 1, Visits: 1}}))
		require.NoError(t, p.Save(first))
		second := NewStore(1)
		second.Merge(1, tableOf(map[uint64]searcher.Stat{2: {Value: 1, Visits: 1}}))
		require.NoError(t, p.Save(second))

		loaded := NewStore(1)
		require.NoError(t, p.Load(loaded))

		require.Equal(t, 1, loaded.Len())
		snapshot, _ := loaded.Snapshot(1)
		_, ok := snapshot.Get(1)
		require.False(t, ok, "Statistics of the first store should be gone")
	})

	t.Run("an interrupted save keeps the previous one", func(t *testing.T) {
		p, err := Open("")
		require.NoError(t, err)
		defer p.Close()

		store := NewStore(1)
		store.Merge(1, tableOf(map[uint64]searcher.Stat{1: {Value: 1, Visits: 2}}))
		require.NoError(t, p.Save(store))
		// Statistics of the next generation written without committing it
		require.NoError(t, p.db.Update(func(txn *badger.Txn) error {
			return txn.Set(statKey(2, 1, 7), encodeStat(searcher.Stat{Value: 9, Visits: 9}))
		}))

		loaded := NewStore(1)
		require.NoError(t, p.Load(loaded))

		snapshot, _ := loaded.Snapshot(1)
		require.Equal(t, 1, snapshot.Len(), "Uncommitted statistics should not be loaded")
		stat, _ := snapshot.Get(1)
		require.Equal(t, searcher.Stat{Value: 1, Visits: 2}, stat)
	})

	t.Run("loading an empty database", func(t *testing.T) {
		p, err := Open("")
		require.NoError(t, err)
		defer p.Close()

		store := NewStore(1)
		store.Merge(1, tableOf(map[uint64]searcher.Stat{1: {Value: 1, Visits: 1}}))

		require.NoError(t, p.Load(store))
		require.Equal(t, 1, store.Len(), "Store should be untouched")
	})

	t.Run("persisting to disk", func(t *testing.T) {
		dir := t.TempDir()
		p, err := Open(dir)
		require.NoError(t, err)
		store := NewStore(1)
		store.Merge(2, tableOf(map[uint64]searcher.Stat{3: {Value: 2, Visits: 4}}))
		require.NoError(t, p.Save(store))
		require.NoError(t, p.Close())

		reopened, err := Open(dir)
		require.NoError(t, err)
		defer reopened.Close()
		loaded := NewStore(1)
		require.NoError(t, reopened.Load(loaded))

		require.Equal(t, uint64(1), loaded.Version())
		require.Equal(t, []int{2}, loaded.Players())
		require.Equal(t, 1, loaded.Len())
	})
}
