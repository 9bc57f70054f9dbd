package heuristic

import (
	"fmt"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/search"
)

// Gridded is implemented by problems that are played on a layout. Every
// heuristic in this package needs it to reach the oracle.
type Gridded interface {
	Layout() *game.Layout
}

func layoutOf[S comparable](p search.Problem[S, game.Direction]) *game.Layout {
	g, ok := p.(Gridded)
	if !ok {
		panic(fmt.Sprintf("heuristic: problem %T does not expose a layout", p))
	}
	return g.Layout()
}

type matrixKey struct{}

// goalMatrixFor returns the cached goal matrix for the problem, building it
// from the initial state's goals on first use and rebuilding when a state
// carries a goal outside the current baseline.
func goalMatrixFor(p search.Problem[game.DungeonState, game.Direction], l *game.Layout, o *Oracle, remaining game.Coins) *goalMatrix {
	cache := p.Cache()
	m := search.CacheValue(cache, matrixKey{}, func() *goalMatrix {
		return buildGoalMatrix(l, o, p.InitialState().Remaining)
	})
	if !m.covers(remaining) {
		builds := m.builds
		m = buildGoalMatrix(l, o, remaining)
		m.builds = builds + 1
		cache.Store(matrixKey{}, m)
	}
	return m
}

// nearest is the smallest oracle distance from p to any of the goals.
func nearest(o *Oracle, p game.Point, goals []game.Point) int {
	best := Unreachable
	for _, g := range goals {
		if d := o.Distance(p, g); d < best {
			best = d
		}
	}
	return best
}

// MultiGoal estimates the cost of collecting every remaining coin: the
// weight of a minimum spanning tree over the remaining coins plus the
// distance from the player to the nearest one.
//
// Both terms are lower bounds (any route through all coins spans them, and it
// has to reach one of them first), so the sum is admissible. One step moves
// the nearest term by at most one and picking up a coin lowers the tree by no
// more than the edge it removes, so it is also consistent.
//
// The exit is not considered; with no coins left the estimate is zero.
func MultiGoal(p search.Problem[game.DungeonState, game.Direction], s game.DungeonState) float64 {
	if s.Remaining.Empty() {
		return 0
	}
	l := layoutOf(p)
	o := OracleFor(p.Cache(), l)
	m := goalMatrixFor(p, l, o, s.Remaining)

	return float64(m.mstWeight(s.Remaining) + nearest(o, s.Player, l.CoinPoints(s.Remaining)))
}

// MultiGoalToExit extends MultiGoal with the cheapest hop from a remaining
// coin to the exit. With no coins left it is the exact distance to the exit.
func MultiGoalToExit(p search.Problem[game.DungeonState, game.Direction], s game.DungeonState) float64 {
	l := layoutOf(p)
	o := OracleFor(p.Cache(), l)
	if s.Remaining.Empty() {
		return float64(o.Distance(l.Exit, s.Player))
	}
	return MultiGoal(p, s) + float64(nearest(o, l.Exit, l.CoinPoints(s.Remaining)))
}

// Weak is the straight-line distance from the player to the exit. It is
// consistent but ignores the coins entirely.
func Weak(p search.Problem[game.DungeonState, game.Direction], s game.DungeonState) float64 {
	return game.Euclidean(s.Player, layoutOf(p).Exit)
}
