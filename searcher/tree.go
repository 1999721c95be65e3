package searcher

import (
	"math"

	"cardsearch/game"
)

const noParent = -1

// node is one step of the searched turn. Nodes live in the tree's arena and
// refer to each other by index.
type node struct {
	parent     int
	decision   game.Decision // Decision leading here, nil at the root
	unexplored []game.Decision
	children   []int
	rewards    float64
	visits     float64
	ended      bool // The turn is over at this node
}

type tree struct {
	nodes      []node
	decomposer *Decomposer
}

func newTree(root game.State, decomposer *Decomposer) *tree {
	t := &tree{decomposer: decomposer}
	t.add(noParent, nil, root, 0)
	return t
}

// add appends a node reached by decision and returns its index. depth is the
// number of decisions from the root.
func (t *tree) add(parent int, decision game.Decision, state game.State, depth int) int {
	n := node{parent: parent, decision: decision}
	if (decision != nil && decision.IsTerminator()) || state.IsTerminal() {
		n.ended = true
	} else if options := t.decomposer.Options(state); len(options) == 0 || t.decomposer.capped(depth) {
		n.unexplored = []game.Decision{state.Terminator()}
	} else {
		n.unexplored = options
	}
	t.nodes = append(t.nodes, n)
	index := len(t.nodes) - 1
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, index)
	}
	return index
}

// selectThenExpand walks down by UCB1 until it reaches a node with unexplored
// options, expands one of them and returns the new node. state is advanced
// along the way.
func (t *tree) selectThenExpand(state game.State, exploration float64) (int, int) {
	index, depth := 0, 0
	for {
		n := &t.nodes[index]
		if n.ended {
			return index, depth
		}
		if len(n.unexplored) > 0 {
			decision := n.unexplored[0]
			n.unexplored = n.unexplored[1:]
			state.Apply(decision)
			return t.add(index, decision, state, depth+1), depth + 1
		}
		index = t.pickChild(index, exploration)
		state.Apply(t.nodes[index].decision)
		depth++
	}
}

func (t *tree) pickChild(index int, exploration float64) int {
	parent := t.nodes[index]
	if parent.visits == 0 {
		panic("node has children but no visits")
	}
	policy := newUCB1(exploration, parent.visits)

	best := -1
	bestScore := math.Inf(-1)
	for _, child := range parent.children {
		c := t.nodes[child]
		if c.visits == 0 { // Prioritize unvisited children
			return child
		}
		if score := policy.score(c); score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// backup adds the reward to every node from index up to the root. All nodes
// belong to the same player's turn.
func (t *tree) backup(index int, reward float64) {
	for index != noParent {
		t.nodes[index].rewards += reward
		t.nodes[index].visits++
		index = t.nodes[index].parent
	}
}

// bestPath follows the most visited children from the root.
func (t *tree) bestPath() (game.CombinedAction, bool) {
	var action game.CombinedAction
	index := 0
	for {
		n := t.nodes[index]
		if n.ended {
			return action, true
		}
		if len(n.children) == 0 {
			return action, false
		}
		best := n.children[0]
		for _, child := range n.children[1:] {
			if t.nodes[child].visits > t.nodes[best].visits {
				best = child
			}
		}
		index = best
		action = append(action, t.nodes[index].decision)
	}
}
