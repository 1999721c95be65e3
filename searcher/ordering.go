package searcher

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"cardsearch/game"
)

// Ordering decides in which order the elementary options of a step are
// considered by expansion and tree search.
type Ordering int

const (
	OrderNone Ordering = iota
	OrderCategory
	OrderCostAscending
	OrderCostDescending
	OrderEntropyAscending
	OrderEntropyDescending
)

var orderingNames = map[Ordering]string{
	OrderNone:              "none",
	OrderCategory:          "category",
	OrderCostAscending:     "cost-asc",
	OrderCostDescending:    "cost-desc",
	OrderEntropyAscending:  "entropy-asc",
	OrderEntropyDescending: "entropy-desc",
}

func (o Ordering) String() string {
	if name, ok := orderingNames[o]; ok {
		return name
	}
	return fmt.Sprintf("ordering(%d)", int(o))
}

func ParseOrdering(name string) (Ordering, error) {
	for o, n := range orderingNames {
		if n == name {
			return o, nil
		}
	}
	return OrderNone, fmt.Errorf("unknown ordering %q", name)
}

// order sorts options in place. Sorting is stable so equal options keep the
// order the rules engine listed them in.
func (o Ordering) order(options []game.Decision, prior *WeightTable) {
	switch o {
	case OrderNone:
	case OrderCategory:
		slices.SortStableFunc(options, func(a, b game.Decision) int {
			return cmp.Compare(a.Category(), b.Category())
		})
	case OrderCostAscending:
		slices.SortStableFunc(options, func(a, b game.Decision) int {
			return cmp.Compare(a.Cost(), b.Cost())
		})
	case OrderCostDescending:
		slices.SortStableFunc(options, func(a, b game.Decision) int {
			return cmp.Compare(b.Cost(), a.Cost())
		})
	case OrderEntropyAscending:
		slices.SortStableFunc(options, func(a, b game.Decision) int {
			return cmp.Compare(entropy(prior, a), entropy(prior, b))
		})
	case OrderEntropyDescending:
		slices.SortStableFunc(options, func(a, b game.Decision) int {
			return cmp.Compare(entropy(prior, b), entropy(prior, a))
		})
	default:
		panic(fmt.Sprintf("unexpected ordering %d", o))
	}
}

// entropy is the binary entropy in bits of the decision's prior mean value.
// Decisions without statistics are maximally uncertain.
func entropy(prior *WeightTable, d game.Decision) float64 {
	if prior == nil {
		return 1
	}
	stat, ok := prior.Get(d.Canonical())
	if !ok || stat.Visits == 0 {
		return 1
	}
	p := min(max(stat.Mean(), 0), 1)
	if p == 0 || p == 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}
