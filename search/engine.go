package search

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects the frontier ordering.
type Strategy int

const (
	StrategyBreadthFirst Strategy = iota
	StrategyDepthFirst
	StrategyUniformCost
	StrategyAStar
	StrategyGreedyBestFirst
)

// Strategies lists every strategy in a stable order.
var Strategies = []Strategy{
	StrategyBreadthFirst,
	StrategyDepthFirst,
	StrategyUniformCost,
	StrategyAStar,
	StrategyGreedyBestFirst,
}

var strategyNames = map[Strategy]string{
	StrategyBreadthFirst:    "bfs",
	StrategyDepthFirst:      "dfs",
	StrategyUniformCost:     "ucs",
	StrategyAStar:           "astar",
	StrategyGreedyBestFirst: "gbfs",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Informed reports whether the strategy consults a heuristic.
func (s Strategy) Informed() bool {
	return s == StrategyAStar || s == StrategyGreedyBestFirst
}

// ParseStrategy maps a name produced by String (or a common alias) back to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first":
		return StrategyBreadthFirst, nil
	case "dfs", "depth-first":
		return StrategyDepthFirst, nil
	case "ucs", "uniform-cost", "dijkstra":
		return StrategyUniformCost, nil
	case "astar", "a*":
		return StrategyAStar, nil
	case "gbfs", "greedy", "best-first":
		return StrategyGreedyBestFirst, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Status is the outcome of a search.
type Status int

const (
	NoSolution Status = iota
	Solved
	BudgetExceeded
)

func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case NoSolution:
		return "no_solution"
	case BudgetExceeded:
		return "budget_exceeded"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result contains the outcome of a search.
//
// Path is nil unless Status is Solved. A solved search starting on a goal
// returns an empty, non-nil path.
type Result[A any] struct {
	Status    Status
	Path      []A
	Cost      float64
	Expanded  int
	Generated int
	Elapsed   time.Duration
}

func (r Result[A]) Solved() bool { return r.Status == Solved }

// BreadthFirst expands states in FIFO order. The path is minimal in number of
// actions.
func BreadthFirst[S comparable, A any](p Problem[S, A], initial S, opts ...Option) Result[A] {
	return run(StrategyBreadthFirst, p, initial, nil, opts)
}

// DepthFirst expands states in LIFO order. No optimality guarantee.
func DepthFirst[S comparable, A any](p Problem[S, A], initial S, opts ...Option) Result[A] {
	return run(StrategyDepthFirst, p, initial, nil, opts)
}

// UniformCost orders the frontier by accumulated path cost.
func UniformCost[S comparable, A any](p Problem[S, A], initial S, opts ...Option) Result[A] {
	return run(StrategyUniformCost, p, initial, nil, opts)
}

// AStar orders the frontier by path cost plus heuristic estimate. The path is
// cost-optimal when h is consistent.
func AStar[S comparable, A any](p Problem[S, A], initial S, h Heuristic[S, A], opts ...Option) Result[A] {
	return run(StrategyAStar, p, initial, h, opts)
}

// GreedyBestFirst orders the frontier by heuristic estimate alone.
func GreedyBestFirst[S comparable, A any](p Problem[S, A], initial S, h Heuristic[S, A], opts ...Option) Result[A] {
	return run(StrategyGreedyBestFirst, p, initial, h, opts)
}

// Run dispatches to the entry point for strategy. h is ignored by uninformed
// strategies and defaults to Zero for informed ones.
func Run[S comparable, A any](strategy Strategy, p Problem[S, A], initial S, h Heuristic[S, A], opts ...Option) Result[A] {
	return run(strategy, p, initial, h, opts)
}

func run[S comparable, A any](strategy Strategy, p Problem[S, A], initial S, h Heuristic[S, A], opts []Option) Result[A] {
	o := buildOptions(opts)
	start := time.Now()

	if h == nil {
		h = Zero[S, A]
	}

	var f frontier[S, A]
	switch strategy {
	case StrategyBreadthFirst:
		f = &fifo[S, A]{}
	case StrategyDepthFirst:
		f = &lifo[S, A]{}
	default:
		f = &priorityFrontier[S, A]{}
	}

	priority := func(g float64, s S) float64 {
		switch strategy {
		case StrategyUniformCost:
			return g
		case StrategyAStar:
			return g + h(p, s)
		case StrategyGreedyBestFirst:
			return h(p, s)
		}
		return 0
	}

	var res Result[A]
	var seq uint64
	f.push(entry[S, A]{priority: priority(0, initial), seq: seq, state: initial, path: []A{}})

	explored := make(map[S]struct{})
	for f.len() > 0 {
		e := f.pop()
		if _, seen := explored[e.state]; seen {
			continue
		}
		if o.exceeded(res.Expanded, start) {
			res.Status = BudgetExceeded
			res.Elapsed = time.Since(start)
			return res
		}

		explored[e.state] = struct{}{}
		res.Expanded++
		if o.Observer != nil {
			o.Observer(Expansion{
				Step:        res.Expanded,
				State:       e.state,
				Depth:       len(e.path),
				G:           e.g,
				Priority:    e.priority,
				FrontierLen: f.len(),
			})
		}

		if p.IsGoal(e.state) {
			res.Status = Solved
			res.Path = e.path
			res.Cost = e.g
			res.Elapsed = time.Since(start)
			return res
		}

		for _, a := range p.Actions(e.state) {
			child := p.Successor(e.state, a)
			g := e.g + p.Cost(e.state, child)
			seq++
			f.push(entry[S, A]{
				priority: priority(g, child),
				seq:      seq,
				g:        g,
				state:    child,
				path:     append(e.path[:len(e.path):len(e.path)], a),
			})
			res.Generated++
		}
	}

	res.Status = NoSolution
	res.Elapsed = time.Since(start)
	return res
}
