package retain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"cardsearch/game"
	"cardsearch/searcher"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Statistics of one save live under stat/<generation>/<player>/<signature>.
// meta/generation names the complete save, so an interrupted save leaves the
// previous one readable.
const (
	statPrefix    = "stat/"
	generationKey = "meta/generation"
	versionKey    = "meta/version"
)

// Persister saves stores to an embedded badger database.
type Persister struct {
	db *badger.DB
}

// Open opens the database in dir, or an in-memory database when dir is empty.
func Open(dir string) (*Persister, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &Persister{db: db}, nil
}

func (p *Persister) Close() error {
	return p.db.Close()
}

// Save replaces the persisted statistics with a snapshot of store. The new
// statistics are written before the old ones are dropped.
func (p *Persister) Save(store *Store) error {
	version := store.Version()
	tables := map[int]*searcher.WeightTable{}
	for _, player := range store.Players() {
		tables[player], _ = store.Snapshot(player)
	}

	previous, err := p.generation()
	if err != nil {
		return fmt.Errorf("failed to read generation: %w", err)
	}
	generation := previous + 1

	batch := p.db.NewWriteBatch()
	defer batch.Cancel()
	n := 0
	for player, table := range tables {
		for _, sig := range table.Signatures() {
			stat, _ := table.Get(sig)
			if err := batch.Set(statKey(generation, player, sig), encodeStat(stat)); err != nil {
				return fmt.Errorf("failed to write statistic %d of player %d: %w", sig, player, err)
			}
			n++
		}
	}
	if err := batch.Flush(); err != nil {
		return fmt.Errorf("failed to save statistics: %w", err)
	}

	err = p.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(generationKey), binary.BigEndian.AppendUint64(nil, generation)); err != nil {
			return err
		}
		return txn.Set([]byte(versionKey), binary.BigEndian.AppendUint64(nil, version))
	})
	if err != nil {
		return fmt.Errorf("failed to commit generation %d: %w", generation, err)
	}

	if previous > 0 {
		if err := p.db.DropPrefix(generationPrefix(previous)); err != nil {
			return fmt.Errorf("failed to drop generation %d: %w", previous, err)
		}
	}

	log.Debug().Int("decisions", n).Uint64("version", version).Uint64("generation", generation).Msg("saved retained statistics")
	return nil
}

// generation returns the generation of the last complete save, 0 if there is
// none.
func (p *Persister) generation() (uint64, error) {
	var generation uint64
	err := p.db.View(func(txn *badger.Txn) error {
		var err error
		generation, _, err = readUint64(txn, generationKey)
		return err
	})
	return generation, err
}

// Load restores the persisted statistics into store. An empty database leaves
// the store untouched.
func (p *Persister) Load(store *Store) error {
	tables := map[int]*searcher.WeightTable{}
	var version uint64
	found := false

	err := p.db.View(func(txn *badger.Txn) error {
		generation, ok, err := readUint64(txn, generationKey)
		if err != nil || !ok {
			return err
		}
		found = true
		if version, _, err = readUint64(txn, versionKey); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = generationPrefix(generation)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			player, sig, err := parseStatKey(item.Key(), opts.Prefix)
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				stat, err := decodeStat(val)
				if err != nil {
					return fmt.Errorf("statistic %d of player %d: %w", sig, player, err)
				}
				table, ok := tables[player]
				if !ok {
					table = searcher.NewWeightTable()
					tables[player] = table
				}
				table.Set(sig, stat)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}
	if !found {
		return nil
	}

	store.Restore(tables, version)
	log.Debug().Int("decisions", store.Len()).Uint64("version", version).Msg("loaded retained statistics")
	return nil
}

func readUint64(txn *badger.Txn, key string) (uint64, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var value uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("malformed %s of %d bytes", key, len(val))
		}
		value = binary.BigEndian.Uint64(val)
		return nil
	})
	return value, err == nil, err
}

func generationPrefix(generation uint64) []byte {
	return []byte(statPrefix + strconv.FormatUint(generation, 16) + "/")
}

func statKey(generation uint64, player int, sig game.Signature) []byte {
	return append(generationPrefix(generation), strconv.Itoa(player)+"/"+strconv.FormatUint(uint64(sig), 16)...)
}

func parseStatKey(key, prefix []byte) (int, game.Signature, error) {
	playerPart, sigPart, ok := strings.Cut(strings.TrimPrefix(string(key), string(prefix)), "/")
	if !ok {
		return 0, 0, fmt.Errorf("malformed statistic key %q", key)
	}
	player, err := strconv.Atoi(playerPart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed player in statistic key %q: %w", key, err)
	}
	sig, err := strconv.ParseUint(sigPart, 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed signature in statistic key %q: %w", key, err)
	}
	return player, game.Signature(sig), nil
}

func encodeStat(stat searcher.Stat) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], math.Float64bits(stat.Value))
	binary.BigEndian.PutUint64(buf[8:], uint64(stat.Visits))
	return buf
}

func decodeStat(buf []byte) (searcher.Stat, error) {
	if len(buf) != 16 {
		return searcher.Stat{}, fmt.Errorf("malformed value of %d bytes", len(buf))
	}
	return searcher.Stat{
		Value:  math.Float64frombits(binary.BigEndian.Uint64(buf[:8])),
		Visits: int(binary.BigEndian.Uint64(buf[8:])),
	}, nil
}
