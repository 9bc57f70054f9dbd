package search_test

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/heuristic"
	"github.com/brensch/gridsearch/rules"
	"github.com/brensch/gridsearch/search"
)

func mustLayout(t testing.TB, level string) *game.Layout {
	t.Helper()
	l, err := game.ParseLayoutString(level)
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	return l
}

// replay walks path from the initial state and returns where it ends and what
// it cost.
func replay[S comparable, A any](p search.Problem[S, A], path []A) (S, float64) {
	s := p.InitialState()
	cost := 0.0
	for _, a := range path {
		next := p.Successor(s, a)
		cost += p.Cost(s, next)
		s = next
	}
	return s, cost
}

// referenceDistance is a plain BFS over the layout used to cross-check the engine.
func referenceDistance(l *game.Layout, from, to game.Point) int {
	dist := map[game.Point]int{from: 0}
	queue := []game.Point{from}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == to {
			return dist[p]
		}
		for _, d := range game.Directions {
			n := p.Add(d.Vector())
			if _, seen := dist[n]; seen || !l.Walkable(n) {
				continue
			}
			dist[n] = dist[p] + 1
			queue = append(queue, n)
		}
	}
	return -1
}

func generated(t testing.TB, seed int64, settings game.GenerateSettings) *game.Layout {
	t.Helper()
	l, err := game.Generate(rand.New(rand.NewSource(seed)), settings, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return l
}

func TestCorridor(t *testing.T) {
	l := mustLayout(t, "@...E")
	want := []game.Direction{game.Right, game.Right, game.Right, game.Right}

	for _, strategy := range []search.Strategy{
		search.StrategyBreadthFirst,
		search.StrategyDepthFirst,
		search.StrategyUniformCost,
		search.StrategyAStar,
	} {
		p := rules.NewMazeProblem(l)
		res := search.Run(strategy, p, p.InitialState(), nil)
		if !res.Solved() {
			t.Fatalf("%s: status %s", strategy, res.Status)
		}
		if !reflect.DeepEqual(res.Path, want) {
			t.Errorf("%s: path %s, want RRRR", strategy, game.FormatPath(res.Path))
		}
		if res.Expanded != 5 {
			t.Errorf("%s: expanded %d, want 5", strategy, res.Expanded)
		}
		if res.Cost != 4 {
			t.Errorf("%s: cost %v, want 4", strategy, res.Cost)
		}
	}
}

func TestBreadthFirst_MatchesReference(t *testing.T) {
	settings := game.GenerateSettings{Width: 12, Height: 9, WallChance: 30}
	for seed := int64(1); seed <= 20; seed++ {
		l := generated(t, seed, settings)
		p := rules.NewMazeProblem(l)
		res := search.BreadthFirst(p, p.InitialState())
		want := referenceDistance(l, l.Start, l.Exit)
		if !res.Solved() || len(res.Path) != want {
			t.Fatalf("seed %d: bfs %s len %d, reference %d\n%s", seed, res.Status, len(res.Path), want, l)
		}
		end, cost := replay[game.Point, game.Direction](p, res.Path)
		if !p.IsGoal(end) || cost != res.Cost {
			t.Fatalf("seed %d: path %s ends at %v cost %v, result cost %v", seed, game.FormatPath(res.Path), end, cost, res.Cost)
		}

		ucs := search.UniformCost(p, p.InitialState())
		if ucs.Cost != float64(want) {
			t.Fatalf("seed %d: ucs cost %v, reference %d", seed, ucs.Cost, want)
		}
	}
}

func TestAStar_OptimalOnDungeons(t *testing.T) {
	settings := game.GenerateSettings{Width: 9, Height: 7, WallChance: 25, Coins: 4}
	for seed := int64(1); seed <= 10; seed++ {
		l := generated(t, seed, settings)

		ucs := search.UniformCost(rules.NewDungeonProblem(l), rules.NewDungeonProblem(l).InitialState())
		if !ucs.Solved() {
			t.Fatalf("seed %d: ucs %s\n%s", seed, ucs.Status, l)
		}

		for name, h := range map[string]heuristic.DungeonHeuristic{
			"zero":           search.Zero[game.DungeonState, game.Direction],
			"weak":           heuristic.Weak,
			"multigoal-exit": heuristic.MultiGoalToExit,
		} {
			p := rules.NewDungeonProblem(l)
			res := search.AStar(p, p.InitialState(), h)
			if !res.Solved() || res.Cost != ucs.Cost {
				t.Fatalf("seed %d %s: astar %s cost %v, ucs cost %v\n%s", seed, name, res.Status, res.Cost, ucs.Cost, l)
			}
			end, cost := replay[game.DungeonState, game.Direction](p, res.Path)
			if !p.IsGoal(end) || cost != res.Cost {
				t.Fatalf("seed %d %s: replay ended at %v cost %v", seed, name, end, cost)
			}
			if name == "multigoal-exit" && res.Expanded > ucs.Expanded {
				t.Errorf("seed %d: astar expanded %d > ucs %d", seed, res.Expanded, ucs.Expanded)
			}
		}
	}
}

func TestAStar_MultiGoalCollectOnly(t *testing.T) {
	settings := game.GenerateSettings{Width: 10, Height: 8, WallChance: 20, Coins: 5}
	for seed := int64(1); seed <= 10; seed++ {
		l := generated(t, seed, settings)
		config := rules.DungeonConfig{Required: l.AllCoins(), CollectOnly: true}

		base := rules.NewDungeonProblemWithConfig(l, config)
		ucs := search.UniformCost(base, base.InitialState())

		p := rules.NewDungeonProblemWithConfig(l, config)
		res := search.AStar(p, p.InitialState(), heuristic.MultiGoal)
		if !res.Solved() || res.Cost != ucs.Cost {
			t.Fatalf("seed %d: astar %s cost %v, ucs cost %v\n%s", seed, res.Status, res.Cost, ucs.Cost, l)
		}
		if res.Expanded > ucs.Expanded {
			t.Errorf("seed %d: astar expanded %d > ucs %d", seed, res.Expanded, ucs.Expanded)
		}
		t.Logf("seed %d: cost %v astar %d ucs %d", seed, res.Cost, res.Expanded, ucs.Expanded)
	}
}

func TestGreedyAndDepthFirst_FindValidPaths(t *testing.T) {
	settings := game.GenerateSettings{Width: 12, Height: 9, WallChance: 30}
	for seed := int64(1); seed <= 10; seed++ {
		l := generated(t, seed, settings)
		optimal := referenceDistance(l, l.Start, l.Exit)

		p := rules.NewMazeProblem(l)
		for _, res := range []search.Result[game.Direction]{
			search.GreedyBestFirst(p, p.InitialState(), heuristic.Manhattan),
			search.DepthFirst(p, p.InitialState()),
		} {
			if !res.Solved() {
				t.Fatalf("seed %d: %s", seed, res.Status)
			}
			end, _ := replay[game.Point, game.Direction](p, res.Path)
			if end != l.Exit {
				t.Fatalf("seed %d: path %s ends at %v", seed, game.FormatPath(res.Path), end)
			}
			if len(res.Path) < optimal {
				t.Fatalf("seed %d: path shorter than optimal", seed)
			}
		}
	}
}

// graph is a small weighted digraph. Actions are the names of the target nodes.
type graph struct {
	start string
	goal  string
	edges map[string][]edge
	cache *search.Cache
}

type edge struct {
	to   string
	cost float64
}

func (g *graph) InitialState() string { return g.start }
func (g *graph) IsGoal(s string) bool { return s == g.goal }
func (g *graph) Cache() *search.Cache { return g.cache }
func (g *graph) Successor(_ string, a string) string {
	return a
}

func (g *graph) Actions(s string) []string {
	out := make([]string, 0, len(g.edges[s]))
	for _, e := range g.edges[s] {
		out = append(out, e.to)
	}
	return out
}

func (g *graph) Cost(from, to string) float64 {
	for _, e := range g.edges[from] {
		if e.to == to {
			return e.cost
		}
	}
	return 0
}

func diamond() *graph {
	return &graph{
		start: "s",
		goal:  "g",
		edges: map[string][]edge{
			"s": {{to: "a", cost: 1}, {to: "b", cost: 1}},
			"a": {{to: "g", cost: 1}},
			"b": {{to: "g", cost: 1}},
		},
		cache: search.NewCache(),
	}
}

func TestPriorityTieBreak(t *testing.T) {
	var first []any
	for run := 0; run < 10; run++ {
		var order []any
		g := diamond()
		res := search.UniformCost[string, string](g, g.InitialState(), search.WithObserver(func(e search.Expansion) {
			order = append(order, e.State)
		}))
		if !reflect.DeepEqual(order, []any{"s", "a", "b", "g"}) {
			t.Fatalf("expansion order %v", order)
		}
		if !reflect.DeepEqual(res.Path, []string{"a", "g"}) {
			t.Fatalf("path %v, want through the first generated branch", res.Path)
		}
		if first == nil {
			first = order
		} else if !reflect.DeepEqual(order, first) {
			t.Fatalf("run %d expanded %v, first run %v", run, order, first)
		}
	}
}

func TestUniformCost_PrefersCheaperLongerPath(t *testing.T) {
	g := &graph{
		start: "s",
		goal:  "g",
		edges: map[string][]edge{
			"s": {{to: "g", cost: 10}, {to: "a", cost: 1}},
			"a": {{to: "b", cost: 1}},
			"b": {{to: "g", cost: 1}},
		},
		cache: search.NewCache(),
	}
	res := search.UniformCost[string, string](g, g.InitialState())
	if res.Cost != 3 || !reflect.DeepEqual(res.Path, []string{"a", "b", "g"}) {
		t.Fatalf("ucs %v cost %v", res.Path, res.Cost)
	}
	bfs := search.BreadthFirst[string, string](g, g.InitialState())
	if bfs.Cost != 10 || len(bfs.Path) != 1 {
		t.Fatalf("bfs %v cost %v", bfs.Path, bfs.Cost)
	}
}

func TestNoSolution(t *testing.T) {
	l := mustLayout(t, "@.#E")
	p := rules.NewMazeProblem(l)
	for _, strategy := range search.Strategies {
		res := search.Run(strategy, p, p.InitialState(), heuristic.Manhattan)
		if res.Status != search.NoSolution {
			t.Fatalf("%s: status %s", strategy, res.Status)
		}
		if res.Path != nil {
			t.Fatalf("%s: path %v on failure", strategy, res.Path)
		}
		if res.Expanded != 2 {
			t.Fatalf("%s: expanded %d, want 2", strategy, res.Expanded)
		}
	}
}

func TestStartOnGoal(t *testing.T) {
	l := mustLayout(t, "@..E")
	p := rules.NewMazeProblemFrom(l, l.Exit)
	res := search.BreadthFirst(p, p.InitialState())
	if !res.Solved() || res.Path == nil || len(res.Path) != 0 {
		t.Fatalf("result %+v, want solved with empty path", res)
	}
	if res.Expanded != 1 || res.Cost != 0 {
		t.Fatalf("expanded %d cost %v", res.Expanded, res.Cost)
	}
}

func TestMaxExpansions(t *testing.T) {
	l := mustLayout(t, "@.......E")
	p := rules.NewMazeProblem(l)
	res := search.UniformCost(p, p.InitialState(), search.WithMaxExpansions(3))
	if res.Status != search.BudgetExceeded {
		t.Fatalf("status %s, want budget_exceeded", res.Status)
	}
	if res.Expanded != 3 || res.Path != nil {
		t.Fatalf("expanded %d path %v", res.Expanded, res.Path)
	}

	// A budget larger than needed changes nothing.
	res = search.UniformCost(p, p.InitialState(), search.WithMaxExpansions(100))
	if !res.Solved() || res.Expanded != 9 {
		t.Fatalf("status %s expanded %d", res.Status, res.Expanded)
	}
}

// slowMaze delays every expansion so the time limit trips.
type slowMaze struct {
	*rules.MazeProblem
}

func (s slowMaze) Actions(p game.Point) []game.Direction {
	time.Sleep(5 * time.Millisecond)
	return s.MazeProblem.Actions(p)
}

func TestTimeLimit(t *testing.T) {
	l := mustLayout(t, "@..................................E")
	p := slowMaze{rules.NewMazeProblem(l)}
	res := search.BreadthFirst[game.Point, game.Direction](p, p.InitialState(), search.WithTimeLimit(20*time.Millisecond))
	if res.Status != search.BudgetExceeded {
		t.Fatalf("status %s, want budget_exceeded", res.Status)
	}
	if res.Expanded == 0 || res.Expanded >= 36 {
		t.Fatalf("expanded %d", res.Expanded)
	}
}

func TestObserver(t *testing.T) {
	l := mustLayout(t, `
@..
.#.
..E
`)
	p := rules.NewMazeProblem(l)
	var seen []search.Expansion
	res := search.AStar(p, p.InitialState(), heuristic.Manhattan, search.WithObserver(func(e search.Expansion) {
		seen = append(seen, e)
	}))
	if !res.Solved() {
		t.Fatalf("status %s", res.Status)
	}
	if len(seen) != res.Expanded {
		t.Fatalf("observer saw %d expansions, result says %d", len(seen), res.Expanded)
	}
	for i, e := range seen {
		if e.Step != i+1 {
			t.Fatalf("expansion %d has step %d", i, e.Step)
		}
	}
	if seen[0].State != l.Start || seen[0].Depth != 0 {
		t.Fatalf("first expansion %+v", seen[0])
	}
	last := seen[len(seen)-1]
	if last.State != l.Exit || last.Depth != len(res.Path) || last.G != res.Cost {
		t.Fatalf("last expansion %+v", last)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range search.Strategies {
		got, err := search.ParseStrategy(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	if s, err := search.ParseStrategy("Dijkstra"); err != nil || s != search.StrategyUniformCost {
		t.Fatalf("alias: %v %v", s, err)
	}
	if _, err := search.ParseStrategy("ida"); err == nil {
		t.Fatalf("expected error")
	}
	if !search.StrategyAStar.Informed() || search.StrategyUniformCost.Informed() {
		t.Fatalf("informed flags wrong")
	}
}

func TestCache(t *testing.T) {
	c := search.NewCache()
	builds := 0
	build := func() int { builds++; return 42 }
	for i := 0; i < 3; i++ {
		if v := search.CacheValue(c, "answer", build); v != 42 {
			t.Fatalf("value %d", v)
		}
	}
	if builds != 1 || c.Len() != 1 {
		t.Fatalf("builds %d len %d", builds, c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("reset left %d entries", c.Len())
	}

	var none *search.Cache
	none.Store("answer", 1)
	none.Reset()
	builds = 0
	for i := 0; i < 2; i++ {
		if v := search.CacheValue(none, "answer", build); v != 42 {
			t.Fatalf("nil cache value %d", v)
		}
	}
	if builds != 2 || none.Len() != 0 {
		t.Fatalf("nil cache: builds %d len %d", builds, none.Len())
	}
}

func BenchmarkAStarMultiGoal(b *testing.B) {
	l, err := game.Generate(nil, game.GenerateSettings{Width: 16, Height: 12, WallChance: 20, Coins: 6}, 3)
	if err != nil {
		b.Fatalf("generate: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := rules.NewDungeonProblem(l)
		res := search.AStar(p, p.InitialState(), heuristic.MultiGoalToExit)
		if !res.Solved() {
			b.Fatalf("status %s", res.Status)
		}
	}
}

func BenchmarkBreadthFirst(b *testing.B) {
	l, err := game.Generate(nil, game.GenerateSettings{Width: 40, Height: 30, WallChance: 25}, 3)
	if err != nil {
		b.Fatalf("generate: %v", err)
	}
	p := rules.NewMazeProblem(l)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = search.BreadthFirst(p, p.InitialState())
	}
}
