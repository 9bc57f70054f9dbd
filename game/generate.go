// generate.go builds random connected levels for benchmarks and property tests.

package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// GenerateSettings controls random level generation.
type GenerateSettings struct {
	Width      int32
	Height     int32
	WallChance int // Percentage chance (0-100) for each cell to start as a wall
	Coins      int // Number of coins to place, capped by free space and MaxCoins
}

// DefaultGenerateSettings is a small room with a few coins.
var DefaultGenerateSettings = GenerateSettings{Width: 12, Height: 8, WallChance: 20, Coins: 4}

// Generate builds a level in which every open cell is reachable from the
// start. Cells cut off by the random walls are walled in. Start and exit are
// distinct on any board with at least two cells.
//
// If rng is nil, we use deterministic pseudo-random logic seeded from the
// settings and salt, so the same inputs always produce the same level.
func Generate(rng *rand.Rand, settings GenerateSettings, salt uint64) (*Layout, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, ErrEmptyLayout
	}
	if settings.WallChance < 0 {
		settings.WallChance = 0
	}
	if settings.WallChance > 95 {
		settings.WallChance = 95
	}
	if settings.Coins < 0 {
		settings.Coins = 0
	}
	if settings.Coins > MaxCoins {
		settings.Coins = MaxCoins
	}
	if rng == nil {
		seed := int64(deterministicSeed(settings, salt))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	w, h := settings.Width, settings.Height

	// The playable area is the largest open component. Walls are redrawn
	// until it can hold a start, an exit and every coin; after
	// maxWallAttempts the board is left fully open.
	need := settings.Coins + 2
	if cells := int(w) * int(h); need > cells {
		need = cells
	}
	var walls []bool
	var open []Point
	for attempt := 0; ; attempt++ {
		chance := settings.WallChance
		if attempt >= maxWallAttempts {
			chance = 0
		}
		walls = randomWalls(rng, w, h, chance)
		open = largestComponent(w, h, walls)
		if len(open) >= need {
			break
		}
	}

	// Wall in everything outside the chosen component.
	inside := make([]bool, len(walls))
	for _, p := range open {
		inside[int(p.Y)*int(w)+int(p.X)] = true
	}
	for i := range walls {
		walls[i] = !inside[i]
	}

	start := open[rng.Intn(len(open))]

	takeOne := func() (Point, bool) {
		for len(open) > 0 {
			i := rng.Intn(len(open))
			p := open[i]
			open[i] = open[len(open)-1]
			open = open[:len(open)-1]
			if p != start {
				return p, true
			}
		}
		return Point{}, false
	}

	exit, ok := takeOne()
	if !ok {
		// 1x1 board: start and exit coincide.
		exit = start
	}
	coins := make([]Point, 0, settings.Coins)
	for len(coins) < settings.Coins {
		p, ok := takeOne()
		if !ok {
			break
		}
		coins = append(coins, p)
	}

	l, err := NewLayout(w, h, start, exit, coins)
	if err != nil {
		return nil, fmt.Errorf("generate layout: %w", err)
	}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if walls[int(y)*int(w)+int(x)] {
				l.SetWall(Point{X: x, Y: y}, true)
			}
		}
	}
	return l, nil
}

const maxWallAttempts = 32

func randomWalls(rng *rand.Rand, w, h int32, chance int) []bool {
	walls := make([]bool, int(w)*int(h))
	for i := range walls {
		walls[i] = rng.Intn(100) < chance
	}
	return walls
}

// largestComponent returns the cells of the biggest 4-connected open region
// in scan order. The first region found wins ties.
func largestComponent(w, h int32, walls []bool) []Point {
	seen := make([]bool, len(walls))
	var best map[Point]bool
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			i := int(y)*int(w) + int(x)
			if walls[i] || seen[i] {
				continue
			}
			region := floodFill(w, h, walls, Point{X: x, Y: y})
			for p := range region {
				seen[int(p.Y)*int(w)+int(p.X)] = true
			}
			if len(region) > len(best) {
				best = region
			}
		}
	}

	out := make([]Point, 0, len(best))
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if p := (Point{X: x, Y: y}); best[p] {
				out = append(out, p)
			}
		}
	}
	return out
}

func floodFill(w, h int32, walls []bool, start Point) map[Point]bool {
	seen := map[Point]bool{start: true}
	queue := []Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			n := p.Add(d.Vector())
			if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h {
				continue
			}
			if walls[int(n.Y)*int(w)+int(n.X)] || seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}

func deterministicSeed(settings GenerateSettings, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(settings.Width))|(uint64(uint32(settings.Height))<<32))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(settings.WallChance)|(uint64(settings.Coins)<<32))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])

	return h.Sum64()
}
