// Package heuristic provides the distance oracle and the heuristics used by
// the informed search strategies.
//
// All memoized data (distance maps, goal matrices) lives in the problem's
// search.Cache, so it is scoped to one problem instance and is never shared
// between concurrent searches.
package heuristic

import (
	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/rules"
	"github.com/brensch/gridsearch/search"
)

// Unreachable is returned by Oracle.Distance when no path exists. It is a
// large finite cost, so sums of distances never overflow or turn into errors.
const Unreachable = 0xffffffff

// Oracle answers shortest-path hop counts over the walkable cells of a
// layout. Each distinct source costs one full BFS; every later query from the
// same source is a map lookup.
type Oracle struct {
	layout *game.Layout
	maps   map[game.Point]map[game.Point]int
}

func NewOracle(l *game.Layout) *Oracle {
	return &Oracle{layout: l, maps: make(map[game.Point]map[game.Point]int)}
}

// Distance returns the number of moves from p1 to p2, or Unreachable.
func (o *Oracle) Distance(p1, p2 game.Point) int {
	if p1 == p2 {
		return 0
	}
	d, ok := o.DistanceMap(p1)[p2]
	if !ok {
		return Unreachable
	}
	return d
}

// DistanceMap returns hop counts from src to every point reachable from it.
// The returned map is shared with the oracle and must not be modified.
func (o *Oracle) DistanceMap(src game.Point) map[game.Point]int {
	if m, ok := o.maps[src]; ok {
		return m
	}

	m := map[game.Point]int{src: 0}
	// A blocked source reaches nothing, which keeps Distance symmetric.
	if o.layout.Walkable(src) {
		queue := []game.Point{src}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for _, move := range rules.LegalMoves(o.layout, p) {
				next := p.Add(move.Vector())
				if _, seen := m[next]; seen {
					continue
				}
				m[next] = m[p] + 1
				queue = append(queue, next)
			}
		}
	}
	o.maps[src] = m
	return m
}

// Sources is the number of BFS passes run so far.
func (o *Oracle) Sources() int {
	return len(o.maps)
}

type oracleKey struct{}

// OracleFor returns the oracle stored in cache, creating one for l on first use.
func OracleFor(cache *search.Cache, l *game.Layout) *Oracle {
	return search.CacheValue(cache, oracleKey{}, func() *Oracle { return NewOracle(l) })
}
