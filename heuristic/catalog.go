package heuristic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/search"
)

type (
	DungeonHeuristic = search.Heuristic[game.DungeonState, game.Direction]
	MazeHeuristic    = search.Heuristic[game.Point, game.Direction]
)

var dungeonHeuristics = map[string]DungeonHeuristic{
	"zero":           search.Zero[game.DungeonState, game.Direction],
	"weak":           Weak,
	"multigoal":      MultiGoal,
	"multigoal-exit": MultiGoalToExit,
}

var mazeHeuristics = map[string]MazeHeuristic{
	"zero":      search.Zero[game.Point, game.Direction],
	"manhattan": Manhattan,
	"euclidean": Euclidean,
	"exit":      ExitDistance,
}

// ForDungeon looks up a coin collection heuristic by name.
func ForDungeon(name string) (DungeonHeuristic, error) {
	h, ok := dungeonHeuristics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown dungeon heuristic %q (have %s)", name, strings.Join(DungeonNames(), ", "))
	}
	return h, nil
}

// ForMaze looks up an exit finding heuristic by name.
func ForMaze(name string) (MazeHeuristic, error) {
	h, ok := mazeHeuristics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown maze heuristic %q (have %s)", name, strings.Join(MazeNames(), ", "))
	}
	return h, nil
}

func DungeonNames() []string { return sortedKeys(dungeonHeuristics) }
func MazeNames() []string    { return sortedKeys(mazeHeuristics) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
