package ensemble

import (
	"context"
	"encoding/binary"
	"fmt"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher"
	"cardsearch/searcher/retain"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// Ensemble runs independent searches on separately determinized worlds and
// aggregates their answers into one action for the real game.
type Ensemble struct {
	searcher    searcher.Searcher
	size        int
	workers     int
	aggregation Aggregation
	perfect     bool
	seed        uint64
	maxLength   int
	store       *retain.Store
	metrics     metrics.Collector
}

type Option func(e *Ensemble)

func WithSize(size int) Option {
	return func(e *Ensemble) {
		if size > 0 {
			e.size = size
		}
	}
}

func WithWorkers(workers int) Option {
	return func(e *Ensemble) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

func WithAggregation(aggregation Aggregation) Option {
	return func(e *Ensemble) {
		e.aggregation = aggregation
	}
}

// WithPerfectInformation searches the real state without masking or
// determinization.
func WithPerfectInformation(perfect bool) Option {
	return func(e *Ensemble) {
		e.perfect = perfect
	}
}

// WithSeed fixes the master seed. Decisions are reproducible for a fixed seed.
func WithSeed(seed uint64) Option {
	return func(e *Ensemble) {
		if seed != 0 {
			e.seed = seed
		}
	}
}

func WithMaxTurnLength(length int) Option {
	return func(e *Ensemble) {
		if length > 0 {
			e.maxLength = length
		}
	}
}

// WithStore retains member statistics across turns.
func WithStore(store *retain.Store) Option {
	return func(e *Ensemble) {
		e.store = store
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(e *Ensemble) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

func New(s searcher.Searcher, options ...Option) *Ensemble {
	if s == nil {
		panic("ensemble needs a searcher")
	}
	e := &Ensemble{ // Default values
		searcher:  s,
		size:      1,
		workers:   1,
		maxLength: searcher.DefaultMaxTurnLength,
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	if e.seed == 0 {
		e.seed = NewSeed()
	}
	return e
}

// NewSeed draws a master seed from the operating system's entropy.
func NewSeed() uint64 {
	for {
		if seed := binary.LittleEndian.Uint64(frand.Bytes(8)); seed != 0 {
			return seed
		}
	}
}

func (e *Ensemble) Seed() uint64 {
	return e.seed
}

func (e *Ensemble) Size() int {
	return e.size
}

func (e *Ensemble) Searcher() searcher.Searcher {
	return e.searcher
}

type Member struct {
	Index  int
	Seed   uint64
	Budget searcher.Budget
	Result searcher.Result
	Err    error
}

type Result struct {
	Action  game.CombinedAction
	Members []Member
	// Forced is set when no member produced a usable answer
	Forced bool
	Metric metrics.SearchMetric
}

// Consumed sums the playouts of all members.
func (r Result) Consumed() int {
	total := 0
	for _, m := range r.Members {
		total += m.Result.Consumed
	}
	return total
}

// Decide searches the state for the player to move and returns a complete
// action. Members that fail are discarded; when all fail the answer is the
// terminator alone. A cancelled context shortens the searches but is not an
// error.
func (e *Ensemble) Decide(ctx context.Context, state game.State, budget searcher.Budget) (Result, error) {
	if err := budget.Validate(); err != nil {
		return Result{}, err
	}
	share, err := e.share(budget)
	if err != nil {
		return Result{}, fmt.Errorf("failed to split budget among %d members: %w", e.size, err)
	}

	e.metrics.Start(e.searcher.Name(), e.size)
	player := state.Player()
	if len(state.LegalOptions()) == 0 {
		return Result{Action: game.Forced(state), Forced: true, Metric: e.metrics.Complete()}, nil
	}

	view := e.view(state)
	var prior *searcher.WeightTable
	if e.store != nil {
		prior, _ = e.store.Snapshot(player)
	}

	members := make([]Member, e.size)
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range members {
		members[i] = Member{
			Index:  i,
			Seed:   memberSeed(e.seed, state.Turn(), i),
			Budget: share,
		}
		g.Go(func() error {
			m := &members[i]
			m.Result, m.Err = e.run(ctx, view, player, m.Seed, m.Budget, prior)
			return nil
		})
	}
	_ = g.Wait()

	var succeeded []Member
	for _, m := range members {
		if m.Err != nil {
			e.metrics.AddFailure()
			log.Warn().Err(m.Err).Int("member", m.Index).Msg("discarding ensemble member")
			continue
		}
		succeeded = append(succeeded, m)
	}

	result := Result{Members: members}
	if len(succeeded) == 0 {
		log.Warn().Int("members", e.size).Msg("all ensemble members failed, ending the turn")
		result.Action = game.Forced(state)
		result.Forced = true
		result.Metric = e.metrics.Complete()
		return result, nil
	}

	rng := rand.New(rand.NewSource(memberSeed(e.seed, state.Turn(), e.size)))
	switch e.aggregation {
	case AggregateVote:
		result.Action = vote(state.Copy(), succeeded, e.maxLength, rng)
	case AggregateMerge:
		result.Action = merge(state.Copy(), succeeded, e.maxLength, rng)
	default:
		panic(fmt.Sprintf("unexpected aggregation %d", e.aggregation))
	}

	if e.store != nil {
		tables := make([]*searcher.WeightTable, len(succeeded))
		for i, m := range succeeded {
			tables[i] = m.Result.Stats
		}
		version := e.store.Merge(player, tables...)
		log.Debug().Uint64("version", version).Msg("retained member statistics")
	}

	result.Metric = e.metrics.Complete()
	log.Debug().
		Int("turn", state.Turn()).
		Int("player", player).
		Int("members", len(succeeded)).
		Int("consumed", result.Consumed()).
		Stringer("action", result.Action).
		Msg("ensemble decided")
	return result, nil
}

// share is the budget of one member. Timed budgets are divided by the number
// of waves the workers need to run all members.
func (e *Ensemble) share(budget searcher.Budget) (searcher.Budget, error) {
	if budget.IsTimed() {
		waves := (e.size + e.workers - 1) / e.workers
		return budget.Divide(waves)
	}
	return budget.Divide(e.size)
}

// view is what the searching player may know about the state.
func (e *Ensemble) view(state game.State) game.State {
	if e.perfect {
		return state
	}
	imperfect, ok := state.(game.Imperfect)
	if !ok {
		return state
	}
	return imperfect.Mask(state.Player())
}

// run searches one member's world. A panicking search only fails its member.
func (e *Ensemble) run(ctx context.Context, view game.State, player int, seed uint64, budget searcher.Budget, prior *searcher.WeightTable) (result searcher.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("member search panicked: %v", r)
		}
	}()

	rng := rand.New(rand.NewSource(seed))
	var world game.State
	if imperfect, ok := view.(game.Imperfect); ok && !e.perfect {
		world = imperfect.Determinize(player, rng)
	} else {
		world = view.Copy()
	}

	result, err = e.searcher.Search(ctx, searcher.Request{
		State:   world,
		Budget:  budget,
		Rand:    rng,
		Prior:   prior,
		Metrics: e.metrics,
	})
	if err != nil {
		return searcher.Result{}, err
	}
	if !result.Action.Complete() {
		return searcher.Result{}, fmt.Errorf("member returned incomplete action %s", result.Action)
	}
	return result, nil
}

// memberSeed derives independent seeds from the master seed with splitmix64.
func memberSeed(master uint64, turn, index int) uint64 {
	z := master + uint64(turn)*0x9e3779b97f4a7c15 + uint64(index+1)*0xd1b54a32d192ed03
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
