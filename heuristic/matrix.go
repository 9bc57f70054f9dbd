package heuristic

import (
	"github.com/brensch/gridsearch/game"
)

// goalMatrix holds oracle distances between every pair of baseline goals.
// The baseline is fixed at build time; queries for a subset prune the absent
// goals from a view instead of touching the stored distances, so a pair's
// entry is computed once per build.
type goalMatrix struct {
	baseline game.Coins
	coins    []int // coin index of each row
	dist     [][]int
	builds   int
}

func buildGoalMatrix(l *game.Layout, o *Oracle, baseline game.Coins) *goalMatrix {
	coins := baseline.Indices()
	pts := l.CoinPoints(baseline)
	// Ignore indices past the end of the layout's coin list.
	coins = coins[:len(pts)]

	dist := make([][]int, len(coins))
	for i := range dist {
		dist[i] = make([]int, len(coins))
	}
	for i := 0; i < len(coins); i++ {
		for j := i + 1; j < len(coins); j++ {
			d := o.Distance(pts[i], pts[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return &goalMatrix{baseline: baseline, coins: coins, dist: dist, builds: 1}
}

// covers reports whether every goal in remaining has a row.
func (m *goalMatrix) covers(remaining game.Coins) bool {
	return remaining.IsSubsetOf(m.baseline)
}

// distance returns the stored distance between two coin indices.
func (m *goalMatrix) distance(a, b int) (int, bool) {
	i, j := m.row(a), m.row(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.dist[i][j], true
}

func (m *goalMatrix) row(coin int) int {
	for i, c := range m.coins {
		if c == coin {
			return i
		}
	}
	return -1
}

// mstWeight is the weight of the minimum spanning tree over the rows whose
// goals are in remaining (Prim's algorithm on the dense matrix).
func (m *goalMatrix) mstWeight(remaining game.Coins) int {
	active := make([]int, 0, len(m.coins))
	for i, c := range m.coins {
		if remaining.Has(c) {
			active = append(active, i)
		}
	}
	if len(active) < 2 {
		return 0
	}

	inTree := make([]bool, len(active))
	best := make([]int, len(active))
	for k := range best {
		best[k] = -1
	}

	total := 0
	current := 0
	inTree[0] = true
	for added := 1; added < len(active); added++ {
		next := -1
		for k := range active {
			if inTree[k] {
				continue
			}
			d := m.dist[active[current]][active[k]]
			if best[k] < 0 || d < best[k] {
				best[k] = d
			}
			if next < 0 || best[k] < best[next] {
				next = k
			}
		}
		inTree[next] = true
		total += best[next]
		current = next
	}
	return total
}
