package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Tile characters of the level text format.
const (
	TileWall   = '#'
	TileFloor  = '.'
	TileStart  = '@'
	TileCoin   = '$'
	TileExit   = 'E'
	TileVoid   = ' '
	TileCoinAt = '*' // coin under the start tile
)

var (
	ErrEmptyLayout  = errors.New("layout has no rows")
	ErrNoStart      = errors.New("layout has no start tile")
	ErrNoExit       = errors.New("layout has no exit tile")
	ErrTooManyCoins = fmt.Errorf("layout has more than %d coins", MaxCoins)
	ErrUnknownTile  = errors.New("unknown tile")
)

// Layout is the static part of a level. It never changes during a search.
type Layout struct {
	Width  int32
	Height int32
	Start  Point
	Exit   Point
	Coins  []Point

	walls     []bool
	coinIndex map[Point]int
}

// NewLayout builds an open layout of the given size with no walls. Callers
// place walls with SetWall before handing the layout to a problem.
func NewLayout(width, height int32, start, exit Point, coins []Point) (*Layout, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyLayout
	}
	if len(coins) > MaxCoins {
		return nil, ErrTooManyCoins
	}
	l := &Layout{
		Width:     width,
		Height:    height,
		Start:     start,
		Exit:      exit,
		Coins:     append([]Point(nil), coins...),
		walls:     make([]bool, int(width)*int(height)),
		coinIndex: make(map[Point]int, len(coins)),
	}
	for i, c := range l.Coins {
		l.coinIndex[c] = i
	}
	return l, nil
}

func (l *Layout) InBounds(p Point) bool {
	return p.X >= 0 && p.X < l.Width && p.Y >= 0 && p.Y < l.Height
}

// Walkable reports whether the agent may stand on p.
func (l *Layout) Walkable(p Point) bool {
	return l.InBounds(p) && !l.walls[l.offset(p)]
}

// SetWall marks p as blocked (or clears it). Out-of-bounds points are ignored.
func (l *Layout) SetWall(p Point, wall bool) {
	if l.InBounds(p) {
		l.walls[l.offset(p)] = wall
	}
}

// CoinIndex returns the index of the coin lying on p.
func (l *Layout) CoinIndex(p Point) (int, bool) {
	i, ok := l.coinIndex[p]
	return i, ok
}

// AllCoins is the set of every coin in the layout.
func (l *Layout) AllCoins() Coins {
	return AllCoins(len(l.Coins))
}

// CoinPoints resolves a coin set to positions, in index order.
func (l *Layout) CoinPoints(c Coins) []Point {
	idx := c.Indices()
	out := make([]Point, 0, len(idx))
	for _, i := range idx {
		if i < len(l.Coins) {
			out = append(out, l.Coins[i])
		}
	}
	return out
}

// WalkableCount returns the number of open cells.
func (l *Layout) WalkableCount() int {
	n := 0
	for _, w := range l.walls {
		if !w {
			n++
		}
	}
	return n
}

func (l *Layout) offset(p Point) int {
	return int(p.Y)*int(l.Width) + int(p.X)
}

// String renders the layout in the level text format, top row first.
func (l *Layout) String() string {
	return l.Render(nil)
}

// Render draws the layout with optional overlay characters on top of the tiles.
func (l *Layout) Render(overlay map[Point]byte) string {
	var b strings.Builder
	b.Grow(int(l.Width+1) * int(l.Height))
	for y := l.Height - 1; y >= 0; y-- {
		for x := int32(0); x < l.Width; x++ {
			p := Point{X: x, Y: y}
			if c, ok := overlay[p]; ok {
				b.WriteByte(c)
				continue
			}
			b.WriteByte(l.tile(p))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (l *Layout) tile(p Point) byte {
	_, coin := l.coinIndex[p]
	switch {
	case !l.Walkable(p):
		return TileWall
	case p == l.Start && coin:
		return TileCoinAt
	case p == l.Start:
		return TileStart
	case p == l.Exit:
		return TileExit
	case coin:
		return TileCoin
	default:
		return TileFloor
	}
}

// ParseLayoutString is a convenience wrapper around ParseLayout.
func ParseLayoutString(s string) (*Layout, error) {
	return ParseLayout(strings.NewReader(s))
}

// ParseLayout reads a level in the text format:
//
//	#  wall        .  floor
//	@  start       $  coin
//	E  exit        *  coin under the start
//
// Spaces and cells past the end of a short row are walls. The first text row
// is the top of the board (y = Height-1).
func ParseLayout(r io.Reader) (*Layout, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	for len(rows) > 0 && strings.TrimSpace(rows[0]) == "" {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyLayout
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	height := len(rows)

	var start, exit Point
	var hasStart, hasExit bool
	var coins []Point
	walls := make([]Point, 0, width*height/4)
	for i, row := range rows {
		y := int32(height - 1 - i)
		for x := 0; x < width; x++ {
			p := Point{X: int32(x), Y: y}
			c := byte(TileVoid)
			if x < len(row) {
				c = row[x]
			}
			switch c {
			case TileWall, TileVoid:
				walls = append(walls, p)
			case TileFloor:
			case TileStart:
				start, hasStart = p, true
			case TileCoinAt:
				start, hasStart = p, true
				coins = append(coins, p)
			case TileCoin:
				coins = append(coins, p)
			case TileExit:
				exit, hasExit = p, true
			default:
				return nil, fmt.Errorf("%w %q at row %d col %d", ErrUnknownTile, c, i, x)
			}
		}
	}
	if !hasStart {
		return nil, ErrNoStart
	}
	if !hasExit {
		return nil, ErrNoExit
	}

	l, err := NewLayout(int32(width), int32(height), start, exit, coins)
	if err != nil {
		return nil, err
	}
	for _, w := range walls {
		l.SetWall(w, true)
	}
	return l, nil
}
