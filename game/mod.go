package game

import "golang.org/x/exp/rand"

// Signature identifies a decision by value so that identical decisions found in
// independently simulated branches share statistics.
type Signature uint64

// Category groups decisions for ordering and fallback purposes.
type Category int

const (
	CategoryNone Category = iota
	CategoryMandatory
	CategoryPlay
	CategoryAttack
	CategoryEndTurn
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryMandatory:
		return "mandatory"
	case CategoryPlay:
		return "play"
	case CategoryAttack:
		return "attack"
	case CategoryEndTurn:
		return "end_turn"
	default:
		return "unknown"
	}
}

// Decision is an elementary, atomic choice within a turn.
type Decision interface {
	Signature() Signature
	// Canonical ignores parameters that do not change the outcome (e.g. placement)
	Canonical() Signature
	Category() Category
	Cost() int
	IsTerminator() bool
	String() string
}

// State is a deep-copyable snapshot of the game. Apply mutates the receiver, so
// searches only ever apply decisions to their own copies.
type State interface {
	Copy() State
	Player() int
	Turn() int
	LegalOptions() []Decision
	// Apply panics when the decision is not legal in the state
	Apply(Decision)
	Terminator() Decision
	IsTerminal() bool
	Winner() int // 0 while the game is running
}

// Imperfect is implemented by states that hold information hidden from a player.
type Imperfect interface {
	State
	// Mask hides everything the observer cannot know from public history
	Mask(observer int) Imperfect
	// Determinize resamples the masked zones into one fully observed world
	Determinize(observer int, rng *rand.Rand) State
}

// Evaluates the state to a score between 0 and 1 indicating how favorable it is
// for player.
type Evaluate func(state State, player int) float64
