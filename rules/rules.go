// Package rules implements the search problems played on a game.Layout:
// plain exit finding (MazeProblem) and coin collection (DungeonProblem).
package rules

import (
	"github.com/brensch/gridsearch/game"
)

// StepCost is the cost of every move.
const StepCost = 1.0

// LegalMoves returns the moves from p that land on a walkable cell, in
// Up, Down, Left, Right order.
func LegalMoves(l *game.Layout, p game.Point) []game.Direction {
	moves := make([]game.Direction, 0, len(game.Directions))

	// Potential next positions
	candidates := [...]struct {
		move game.Direction
		p    game.Point
	}{
		{game.Up, game.Point{X: p.X, Y: p.Y + 1}},
		{game.Down, game.Point{X: p.X, Y: p.Y - 1}},
		{game.Left, game.Point{X: p.X - 1, Y: p.Y}},
		{game.Right, game.Point{X: p.X + 1, Y: p.Y}},
	}

	for _, c := range candidates {
		if isSafe(l, c.p) {
			moves = append(moves, c.move)
		}
	}

	return moves
}

func isSafe(l *game.Layout, p game.Point) bool {
	// Bounds are checked by Walkable.
	return l.Walkable(p)
}

// NextPoint applies a move. Moves into walls or off the board leave the
// player where it is.
func NextPoint(l *game.Layout, p game.Point, move game.Direction) game.Point {
	next := p.Add(move.Vector())
	if !isSafe(l, next) {
		return p
	}
	return next
}
