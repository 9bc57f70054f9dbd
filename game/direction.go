package game

import (
	"fmt"
	"log/slog"
	"strings"
)

// Direction is one of the four moves available to the agent.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every move in expansion order.
var Directions = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

// Vector returns the unit displacement of the move. Up is +Y.
func (d Direction) Vector() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: 1}
	case Down:
		return Point{X: 0, Y: -1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	}
	return Point{}
}

// Inverse returns the move that undoes d.
func (d Direction) Inverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

func (d Direction) LogValue() slog.Value {
	return slog.StringValue(d.String())
}

// ParseDirection accepts the lowercase names produced by String as well as
// the single letters u, d, l and r.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// FormatPath renders a move sequence compactly, e.g. "RRUL".
func FormatPath(path []Direction) string {
	var b strings.Builder
	b.Grow(len(path))
	for _, d := range path {
		b.WriteByte(strings.ToUpper(d.String())[0])
	}
	return b.String()
}
