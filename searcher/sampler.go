package searcher

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
)

var (
	ErrEmptySampler   = errors.New("sampler has no items")
	ErrZeroWeight     = errors.New("sampler total weight is not positive")
	ErrNegativeWeight = errors.New("weight cannot be negative")
)

// Sampler draws items in O(1) from a discrete weighted distribution using
// Vose's alias method. Building the tables is O(n).
//
// Mutations can be batched by passing recalculate=false; a stale table is
// rebuilt on the next Sample.
type Sampler[T comparable] struct {
	items   []T
	weights []float64
	index   map[T]int

	prob  []float64
	alias []int
	stale bool
}

func NewSampler[T comparable]() *Sampler[T] {
	return &Sampler[T]{index: make(map[T]int)}
}

// Add inserts item or replaces its weight.
func (s *Sampler[T]) Add(item T, weight float64, recalculate bool) error {
	if weight < 0 {
		return fmt.Errorf("failed to add %v with weight %f: %w", item, weight, ErrNegativeWeight)
	}
	if i, ok := s.index[item]; ok {
		s.weights[i] = weight
	} else {
		s.index[item] = len(s.items)
		s.items = append(s.items, item)
		s.weights = append(s.weights, weight)
	}
	s.stale = true
	if recalculate {
		return s.Recalculate()
	}
	return nil
}

// Remove deletes item if present. The last item takes its slot.
func (s *Sampler[T]) Remove(item T, recalculate bool) error {
	i, ok := s.index[item]
	if !ok {
		return nil
	}
	last := len(s.items) - 1
	s.items[i] = s.items[last]
	s.weights[i] = s.weights[last]
	s.index[s.items[i]] = i
	s.items = s.items[:last]
	s.weights = s.weights[:last]
	delete(s.index, item)

	s.stale = true
	if recalculate {
		return s.Recalculate()
	}
	return nil
}

// Recalculate rebuilds the probability and alias tables.
func (s *Sampler[T]) Recalculate() error {
	n := len(s.items)
	if n == 0 {
		return ErrEmptySampler
	}
	total := 0.0
	for _, w := range s.weights {
		total += w
	}
	if total <= 0 {
		return ErrZeroWeight
	}

	s.prob = make([]float64, n)
	s.alias = make([]int, n)
	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range s.weights {
		// Average column has probability 1
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]
		large = large[:len(large)-1]

		s.prob[l] = scaled[l]
		s.alias[l] = g

		scaled[g] = scaled[g] + scaled[l] - 1
		if scaled[g] < 1 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}

	// Whatever is left is 1 up to floating point drift
	for _, g := range large {
		s.prob[g] = 1
		s.alias[g] = g
	}
	for _, l := range small {
		s.prob[l] = 1
		s.alias[l] = l
	}

	s.stale = false
	return nil
}

// Sample draws one item, rebuilding the tables first if they are stale.
func (s *Sampler[T]) Sample(rng *rand.Rand) (T, error) {
	var zero T
	if s.stale || s.prob == nil {
		if err := s.Recalculate(); err != nil {
			return zero, err
		}
	}
	column := rng.Intn(len(s.items))
	if rng.Float64() < s.prob[column] {
		return s.items[column], nil
	}
	return s.items[s.alias[column]], nil
}

func (s *Sampler[T]) Len() int {
	return len(s.items)
}

// Weight returns the raw weight of item, 0 if absent.
func (s *Sampler[T]) Weight(item T) float64 {
	if i, ok := s.index[item]; ok {
		return s.weights[i]
	}
	return 0
}

// Probability returns the normalized probability of drawing item.
func (s *Sampler[T]) Probability(item T) float64 {
	total := 0.0
	for _, w := range s.weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	return s.Weight(item) / total
}
