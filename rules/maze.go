package rules

import (
	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/search"
)

// MazeProblem asks for a path from the layout's start to its exit. Coins are
// ignored.
type MazeProblem struct {
	layout *game.Layout
	start  game.Point
	cache  *search.Cache
}

// NewMazeProblem starts at the layout's start tile.
func NewMazeProblem(l *game.Layout) *MazeProblem {
	return NewMazeProblemFrom(l, l.Start)
}

// NewMazeProblemFrom starts at an arbitrary point.
func NewMazeProblemFrom(l *game.Layout, start game.Point) *MazeProblem {
	return &MazeProblem{layout: l, start: start, cache: search.NewCache()}
}

func (m *MazeProblem) Layout() *game.Layout         { return m.layout }
func (m *MazeProblem) Cache() *search.Cache         { return m.cache }
func (m *MazeProblem) InitialState() game.Point     { return m.start }
func (m *MazeProblem) IsGoal(p game.Point) bool     { return p == m.layout.Exit }
func (m *MazeProblem) Cost(_, _ game.Point) float64 { return StepCost }

func (m *MazeProblem) Actions(p game.Point) []game.Direction {
	return LegalMoves(m.layout, p)
}

func (m *MazeProblem) Successor(p game.Point, move game.Direction) game.Point {
	return NextPoint(m.layout, p, move)
}

var _ search.Problem[game.Point, game.Direction] = (*MazeProblem)(nil)
