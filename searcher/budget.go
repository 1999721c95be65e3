package searcher

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidBudget = errors.New("budget must specify iterations or a duration")

// Budget limits one search by playout count or by wall clock time. Iterations
// take precedence when both are set.
type Budget struct {
	Iterations int
	Duration   time.Duration
}

func Iterations(n int) Budget {
	return Budget{Iterations: n}
}

func Duration(d time.Duration) Budget {
	return Budget{Duration: d}
}

func (b Budget) Validate() error {
	if b.Iterations <= 0 && b.Duration <= 0 {
		return ErrInvalidBudget
	}
	return nil
}

// IsTimed reports whether the budget is a wall clock limit.
func (b Budget) IsTimed() bool {
	return b.Iterations <= 0 && b.Duration > 0
}

// Divide gives each of n members floor(total/n) of the budget.
func (b Budget) Divide(n int) (Budget, error) {
	if n <= 0 {
		return Budget{}, fmt.Errorf("cannot divide budget into %d parts", n)
	}
	if b.IsTimed() {
		return Duration(b.Duration / time.Duration(n)), nil
	}
	share := b.Iterations / n
	if share <= 0 {
		return Budget{}, fmt.Errorf("%d iterations cannot be divided into %d parts: %w", b.Iterations, n, ErrInvalidBudget)
	}
	return Iterations(share), nil
}

// Split divides an iteration budget into generation and evaluation parts, each
// with at least one iteration. Timed budgets are split by the search itself.
func (b Budget) Split(fraction float64) (generation, evaluation int) {
	generation = max(1, int(math.Floor(float64(b.Iterations)*fraction)))
	evaluation = max(1, b.Iterations-generation)
	return generation, evaluation
}

func (b Budget) String() string {
	if b.IsTimed() {
		return b.Duration.String()
	}
	return fmt.Sprintf("%d iterations", b.Iterations)
}

// deadline tracks the wall clock of a timed search. The zero value never expires.
type deadline struct {
	at time.Time
}

func newDeadline(budget Budget, start time.Time) deadline {
	if !budget.IsTimed() {
		return deadline{}
	}
	return deadline{at: start.Add(budget.Duration)}
}

func (d deadline) expired() bool {
	return !d.at.IsZero() && !time.Now().Before(d.at)
}
