// Command solve runs one search on one level file and prints the path drawn
// over the board. With -viewer it asks a running viewer to run the search
// and follows the stream instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/heuristic"
	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/logging"
	"github.com/brensch/gridsearch/rules"
	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/stream"
)

var (
	wallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	coinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	startStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	exitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var arrows = map[game.Direction]byte{game.Up: '^', game.Down: 'v', game.Left: '<', game.Right: '>'}

func main() {
	levelPath := flag.String("level", "", "Path to a level .txt file")
	problem := flag.String("problem", "dungeon", "maze (reach the exit) or dungeon (collect every coin, then exit)")
	strategyName := flag.String("strategy", "astar", "bfs, dfs, ucs, astar or gbfs")
	heuristicName := flag.String("heuristic", "", "Heuristic for informed strategies (default multigoal-exit or exit)")
	maxExpansions := flag.Int("max-expansions", 5_000_000, "Expansion budget (0 = unbounded)")
	timeLimit := flag.Duration("time-limit", time.Minute, "Time budget (0 = unbounded)")
	trace := flag.Bool("trace", false, "Log every expansion at debug level")
	color := flag.Bool("color", true, "Colour the board")
	viewerURL := flag.String("viewer", "", "Viewer base URL (e.g. http://localhost:8080); -level is then a level name on that viewer")
	every := flag.Int("every", 1000, "With -viewer, report progress every N expansions")
	flag.Parse()

	if *levelPath == "" {
		log.Fatalf("-level is required")
	}
	if *viewerURL != "" {
		q := stream.Query{
			Level:     *levelPath,
			Problem:   *problem,
			Strategy:  *strategyName,
			Heuristic: *heuristicName,
			Max:       *maxExpansions,
			Every:     *every,
		}
		if err := watch(context.Background(), os.Stdout, *viewerURL, q, *color); err != nil {
			log.Fatalf("Remote search failed: %v", err)
		}
		return
	}
	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.New(os.Stderr, level, false))

	lvl, err := levels.LoadFile(*levelPath)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}
	strategy, err := search.ParseStrategy(*strategyName)
	if err != nil {
		log.Fatalf("Invalid strategy: %v", err)
	}

	opts := []search.Option{search.WithMaxExpansions(*maxExpansions), search.WithTimeLimit(*timeLimit)}
	if *trace {
		opts = append(opts, search.WithObserver(func(e search.Expansion) {
			slog.Debug("expand", "step", e.Step, "state", e.State, "g", e.G, "f", e.Priority, "frontier", e.FrontierLen)
		}))
	}

	log.Printf("Solving %s (%dx%d, %d coins) as %s with %s", lvl.Name, lvl.Layout.Width, lvl.Layout.Height, len(lvl.Layout.Coins), *problem, strategy)
	res, err := solve(lvl.Layout, *problem, strategy, *heuristicName, opts...)
	if err != nil {
		log.Fatalf("Failed to solve: %v", err)
	}

	fmt.Printf("status:    %s\n", res.Status)
	fmt.Printf("expanded:  %d\n", res.Expanded)
	fmt.Printf("generated: %d\n", res.Generated)
	fmt.Printf("elapsed:   %s\n", res.Elapsed)
	if !res.Solved() {
		os.Exit(1)
	}
	fmt.Printf("cost:      %.0f\n", res.Cost)
	fmt.Printf("path:      %s\n\n", game.FormatPath(res.Path))
	fmt.Print(renderBoard(lvl.Layout, res.Path, *color))
}

// watch follows a search run by a viewer and prints the same report as a
// local solve.
func watch(ctx context.Context, w io.Writer, base string, q stream.Query, color bool) error {
	url, err := stream.SearchURL(base, q)
	if err != nil {
		return err
	}

	var layout *game.Layout
	res, err := stream.Watch(ctx, url, stream.DefaultConfig(), stream.Handler{
		OnLevel: func(ev stream.LevelEvent) {
			log.Printf("Viewer solving %s (%dx%d, %d coins) as %s with %s/%s",
				ev.Level.Name, ev.Level.Width, ev.Level.Height, len(ev.Level.Coins), ev.Problem, ev.Strategy, ev.Heuristic)
			l, err := ev.Level.Layout()
			if err != nil {
				log.Printf("Failed to rebuild level: %v", err)
				return
			}
			layout = l
		},
		OnExpand: func(ev stream.ExpandEvent) {
			log.Printf("step %d: player=(%d,%d) g=%.0f f=%.0f frontier=%d", ev.Step, ev.Player.X, ev.Player.Y, ev.G, ev.Priority, ev.Frontier)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "status:    %s\n", res.Status)
	fmt.Fprintf(w, "expanded:  %d\n", res.Expanded)
	fmt.Fprintf(w, "generated: %d\n", res.Generated)
	fmt.Fprintf(w, "elapsed:   %.3fms\n", res.ElapsedMS)
	if res.Status != search.Solved.String() {
		return fmt.Errorf("search ended with %s", res.Status)
	}
	fmt.Fprintf(w, "cost:      %.0f\n", res.Cost)
	fmt.Fprintf(w, "path:      %s\n\n", res.Path)
	if layout == nil {
		return nil
	}
	path, err := parsePath(res.Path)
	if err != nil {
		return err
	}
	fmt.Fprint(w, renderBoard(layout, path, color))
	return nil
}

// parsePath reverses game.FormatPath.
func parsePath(s string) ([]game.Direction, error) {
	path := make([]game.Direction, 0, len(s))
	for _, c := range s {
		d, err := game.ParseDirection(string(c))
		if err != nil {
			return nil, err
		}
		path = append(path, d)
	}
	return path, nil
}

func solve(l *game.Layout, problem string, strategy search.Strategy, name string, opts ...search.Option) (search.Result[game.Direction], error) {
	switch problem {
	case "maze":
		if name == "" {
			name = "exit"
		}
		h, err := heuristic.ForMaze(name)
		if err != nil {
			return search.Result[game.Direction]{}, err
		}
		p := rules.NewMazeProblem(l)
		return search.Run(strategy, p, p.InitialState(), h, opts...), nil
	case "dungeon":
		if name == "" {
			name = "multigoal-exit"
		}
		h, err := heuristic.ForDungeon(name)
		if err != nil {
			return search.Result[game.Direction]{}, err
		}
		p := rules.NewDungeonProblem(l)
		return search.Run(strategy, p, p.InitialState(), h, opts...), nil
	}
	return search.Result[game.Direction]{}, fmt.Errorf("unknown problem %q", problem)
}

// renderBoard draws the layout with an arrow on every cell the path leaves
// from. Start, exit and coins keep their own tiles.
func renderBoard(l *game.Layout, path []game.Direction, color bool) string {
	overlay := make(map[game.Point]byte, len(path))
	p := l.Start
	for _, d := range path {
		if _, coin := l.CoinIndex(p); p != l.Start && p != l.Exit && !coin {
			overlay[p] = arrows[d]
		}
		p = rules.NextPoint(l, p, d)
	}
	board := l.Render(overlay)
	if !color {
		return board
	}

	var b strings.Builder
	for _, c := range []byte(board) {
		s := string(c)
		switch c {
		case game.TileWall:
			s = wallStyle.Render(s)
		case game.TileCoin, game.TileCoinAt:
			s = coinStyle.Render(s)
		case game.TileStart:
			s = startStyle.Render(s)
		case game.TileExit:
			s = exitStyle.Render(s)
		case '^', 'v', '<', '>':
			s = pathStyle.Render(s)
		}
		b.WriteString(s)
	}
	return b.String()
}
