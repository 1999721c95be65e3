package searcher

import "math"

// ucb1 scores the children of one tree node.
type ucb1 struct {
	exploration float64 // C squared
	logVisits   float64 // ln N of the parent
}

func newUCB1(exploration, parentVisits float64) ucb1 {
	if parentVisits == 0 {
		panic("parent of scored children has no visits")
	}
	return ucb1{exploration: exploration, logVisits: math.Log(parentVisits)}
}

// score is mean + sqrt(C^2 ln N / n). Rewards are in [0, 1] from the acting
// player's point of view.
func (p ucb1) score(n node) float64 {
	if n.visits == 0 {
		panic("scored child has no visits")
	}
	return n.rewards/n.visits + math.Sqrt(p.exploration*p.logVisits/n.visits)
}
