package searcher

import (
	"fmt"

	"cardsearch/game"
)

// mockDecision picks an item. Slot is a placement that does not matter.
type mockDecision struct {
	id        int
	slot      int
	category  game.Category
	cost      int
	mandatory bool
	end       bool
}

func (m mockDecision) Signature() game.Signature {
	return game.Signature(m.id*100 + m.slot + 1)
}

func (m mockDecision) Canonical() game.Signature {
	return game.Signature(m.id*100 + 1)
}

func (m mockDecision) Category() game.Category {
	if m.end {
		return game.CategoryEndTurn
	}
	if m.mandatory {
		return game.CategoryMandatory
	}
	return m.category
}

func (m mockDecision) Cost() int {
	return m.cost
}

func (m mockDecision) IsTerminator() bool {
	return m.end
}

func (m mockDecision) String() string {
	if m.end {
		return "end"
	}
	return fmt.Sprintf("pick(%d@%d)", m.id, m.slot)
}

var endTurn = mockDecision{id: 0, end: true}

// mockState is a game where each turn the player picks any subset of items in
// any order and scores their values. Items already picked this turn cannot be
// picked again.
type mockState struct {
	player   int
	turn     int
	maxTurns int
	items    []mockDecision
	values   map[int]float64
	picked   map[int]bool
	scores   [2]float64
	none     bool // No options at all
}

func newMockState() *mockState {
	return &mockState{
		player:   1,
		turn:     1,
		maxTurns: 10,
		items: []mockDecision{
			{id: 1, category: game.CategoryAttack, cost: 1},
			{id: 2, category: game.CategoryPlay, cost: 3},
			{id: 3, category: game.CategoryAttack, cost: 2},
			{id: 4, category: game.CategoryPlay, cost: 4},
		},
		values: map[int]float64{1: 1, 2: 2, 3: 3, 4: 4},
		picked: map[int]bool{},
		scores: [2]float64{0, 10},
	}
}

func (m *mockState) Copy() game.State {
	c := *m
	c.picked = make(map[int]bool, len(m.picked))
	for id, ok := range m.picked {
		c.picked[id] = ok
	}
	return &c
}

func (m *mockState) Player() int {
	return m.player
}

func (m *mockState) Turn() int {
	return m.turn
}

func (m *mockState) LegalOptions() []game.Decision {
	if m.none || m.IsTerminal() {
		return nil
	}
	var options []game.Decision
	for _, item := range m.items {
		if !m.picked[item.id] {
			options = append(options, item)
		}
	}
	return append(options, endTurn)
}

func (m *mockState) Apply(decision game.Decision) {
	d := decision.(mockDecision)
	if d.end {
		if m.IsTerminal() {
			return
		}
		m.player = 3 - m.player
		m.turn++
		m.picked = map[int]bool{}
		return
	}
	if m.none || m.picked[d.id] {
		panic(fmt.Sprintf("illegal decision %s", d))
	}
	m.picked[d.id] = true
	m.scores[m.player-1] += m.values[d.id]
}

func (m *mockState) Terminator() game.Decision {
	return endTurn
}

func (m *mockState) IsTerminal() bool {
	return m.turn > m.maxTurns
}

func (m *mockState) Winner() int {
	return 0
}

// evaluateMock is the share of the total score owned by player.
func evaluateMock(s game.State, player int) float64 {
	m := s.(*mockState)
	mine, theirs := m.scores[player-1], m.scores[2-player]
	if mine+theirs == 0 {
		return 0.5
	}
	return mine / (mine + theirs)
}

// replay applies action to a copy of state, failing on illegal decisions.
func replay(state game.State, action game.CombinedAction) (game.State, error) {
	s := state.Copy()
	for _, decision := range action {
		if _, ok := game.FindLegal(s.LegalOptions(), decision.Signature()); !ok && !decision.IsTerminator() {
			return nil, fmt.Errorf("%s is not legal", decision)
		}
		s.Apply(decision)
	}
	return s, nil
}
