// Package game defines the grid world types shared by the rules, search and
// heuristic packages.
//
// Every type here is a small value type so it can be used directly as a map
// key by the search engine's explored set and the distance oracle.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"
)

// Point is a board coordinate.
// (0,0) is the bottom-left cell and Y grows upwards.
type Point struct {
	X int32
	Y int32
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (p Point) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("x", int(p.X)), slog.Int("y", int(p.Y)))
}

// Manhattan returns the L1 distance between two points.
func Manhattan(a, b Point) int {
	dx := int(a.X - b.X)
	dy := int(a.Y - b.Y)
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Euclidean returns the straight-line distance between two points.
func Euclidean(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// MaxCoins is the largest number of coins a layout may hold. Coins are
// tracked as a bitset so dungeon states stay comparable.
const MaxCoins = 64

// Coins is a set of coin indices into Layout.Coins.
type Coins uint64

// AllCoins returns the set containing the first n coins.
func AllCoins(n int) Coins {
	if n <= 0 {
		return 0
	}
	if n >= MaxCoins {
		return ^Coins(0)
	}
	return Coins(1)<<uint(n) - 1
}

func (c Coins) Has(i int) bool      { return i >= 0 && i < MaxCoins && c&(1<<uint(i)) != 0 }
func (c Coins) With(i int) Coins    { return c | 1<<uint(i) }
func (c Coins) Without(i int) Coins { return c &^ (1 << uint(i)) }
func (c Coins) Len() int            { return bits.OnesCount64(uint64(c)) }
func (c Coins) Empty() bool         { return c == 0 }

// IsSubsetOf reports whether every coin in c is also in other.
func (c Coins) IsSubsetOf(other Coins) bool {
	return c&^other == 0
}

// Indices returns the coin indices in ascending order.
func (c Coins) Indices() []int {
	out := make([]int, 0, c.Len())
	for rest := uint64(c); rest != 0; rest &= rest - 1 {
		out = append(out, bits.TrailingZeros64(rest))
	}
	return out
}

// DungeonState is the search state of the coin collection problem: where the
// player stands and which required coins are still on the board.
type DungeonState struct {
	Player    Point
	Remaining Coins
}

func (s DungeonState) String() string {
	return fmt.Sprintf("player=%s remaining=%d", s.Player, s.Remaining.Len())
}

func (s DungeonState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("player", s.Player),
		slog.Int("remaining", s.Remaining.Len()),
	)
}
