package heuristic

import (
	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/search"
)

// Manhattan is the L1 distance to the exit.
func Manhattan(p search.Problem[game.Point, game.Direction], s game.Point) float64 {
	return float64(game.Manhattan(s, layoutOf(p).Exit))
}

// Euclidean is the straight-line distance to the exit.
func Euclidean(p search.Problem[game.Point, game.Direction], s game.Point) float64 {
	return game.Euclidean(s, layoutOf(p).Exit)
}

// ExitDistance is the exact walking distance to the exit. All queries share a
// single BFS from the exit.
func ExitDistance(p search.Problem[game.Point, game.Direction], s game.Point) float64 {
	l := layoutOf(p)
	return float64(OracleFor(p.Cache(), l).Distance(l.Exit, s))
}
