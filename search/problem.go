// Package search implements a single frontier-based traversal engine shared
// by breadth-first, depth-first, uniform-cost, A* and greedy best-first search.
//
// The engine is generic over any problem satisfying Problem. It keeps a
// closed set of expanded states and never reopens one, so every reachable
// state is expanded at most once.
package search

// Problem is the contract between the engine (and heuristics) and a concrete
// world. Implementations must be deterministic: Successor is a pure function
// of its inputs and Actions returns moves in a stable order.
type Problem[S comparable, A any] interface {
	InitialState() S
	IsGoal(S) bool
	Actions(S) []A
	Successor(S, A) S
	// Cost of a single edge, from a state to one of its direct successors.
	Cost(from, to S) float64
	// Cache returns the store owned by this problem instance. Heuristics use
	// it to keep memoized data between calls.
	Cache() *Cache
}

// Heuristic estimates the remaining cost from a state to a goal.
type Heuristic[S comparable, A any] func(Problem[S, A], S) float64

// Zero is the trivial admissible heuristic.
func Zero[S comparable, A any](Problem[S, A], S) float64 {
	return 0
}
