package game

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
)

// CombinedAction is the ordered sequence of decisions that makes up one turn.
type CombinedAction []Decision

// Complete reports whether the action ends with the terminator.
func (a CombinedAction) Complete() bool {
	return len(a) > 0 && a[len(a)-1].IsTerminator()
}

func (a CombinedAction) Signature() Signature {
	hasher := fnv.New64a()
	for _, d := range a {
		binary.Write(hasher, binary.LittleEndian, uint64(d.Signature()))
	}
	return Signature(hasher.Sum64())
}

func (a CombinedAction) String() string {
	parts := make([]string, len(a))
	for i, d := range a {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Forced is the answer when there is nothing left to choose.
func Forced(state State) CombinedAction {
	return CombinedAction{state.Terminator()}
}

// FindLegal returns the legal option with the given signature.
func FindLegal(options []Decision, sig Signature) (Decision, bool) {
	for _, option := range options {
		if option.Signature() == sig {
			return option, true
		}
	}
	return nil, false
}
