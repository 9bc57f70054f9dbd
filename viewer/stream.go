package main

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/heuristic"
	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/rules"
	"github.com/brensch/gridsearch/search"
	"github.com/brensch/gridsearch/stream"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The viewer is a local tool; the SPA may be served from a dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamRequest is parsed from the /ws/search query string.
type streamRequest struct {
	level         string
	problem       string
	strategy      search.Strategy
	heuristic     string
	maxExpansions int
	timeLimit     time.Duration
	every         int // send every Nth expansion
}

func parseStreamRequest(q url.Values) (streamRequest, error) {
	req := streamRequest{
		level:         strings.TrimSpace(q.Get("level")),
		problem:       strings.TrimSpace(q.Get("problem")),
		heuristic:     strings.TrimSpace(q.Get("heuristic")),
		maxExpansions: 100_000,
		timeLimit:     30 * time.Second,
		every:         1,
	}
	if req.level == "" {
		return req, fmt.Errorf("level is required")
	}
	if req.problem == "" {
		req.problem = "dungeon"
	}
	if req.problem != "dungeon" && req.problem != "maze" {
		return req, fmt.Errorf("unknown problem %q", req.problem)
	}

	strategy := q.Get("strategy")
	if strategy == "" {
		strategy = "astar"
	}
	var err error
	if req.strategy, err = search.ParseStrategy(strategy); err != nil {
		return req, err
	}
	if req.heuristic == "" {
		req.heuristic = "zero"
	}

	for key, dst := range map[string]*int{"max": &req.maxExpansions, "every": &req.every} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return req, fmt.Errorf("bad %s %q", key, v)
			}
			*dst = n
		}
	}
	return req, nil
}

// eventSender writes events to one websocket connection. After the first
// failed write it drops everything, so a closed client never stalls a search.
type eventSender struct {
	conn   *websocket.Conn
	layout *game.Layout
	every  int
	err    error
	sent   int
}

func (s *eventSender) send(v any) {
	if s.err != nil {
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(v); err != nil {
		s.err = err
		return
	}
	s.sent++
}

func (s *eventSender) observe(e search.Expansion) {
	if s.every > 1 && e.Step%s.every != 0 {
		return
	}
	ev := stream.ExpandEvent{
		Type:     stream.TypeExpand,
		Step:     e.Step,
		Depth:    e.Depth,
		G:        e.G,
		Priority: e.Priority,
		Frontier: e.FrontierLen,
	}
	switch st := e.State.(type) {
	case game.Point:
		ev.Player = stream.FromPoint(st)
	case game.DungeonState:
		ev.Player = stream.FromPoint(st.Player)
		ev.Remaining = stream.FromPoints(s.layout.CoinPoints(st.Remaining))
	}
	s.send(ev)
}

// runSearch solves req on a fresh problem instance built for this stream.
func runSearch(req streamRequest, lvl levels.Level, opts ...search.Option) (search.Result[game.Direction], error) {
	switch req.problem {
	case "maze":
		h, err := heuristic.ForMaze(req.heuristic)
		if err != nil {
			return search.Result[game.Direction]{}, err
		}
		p := rules.NewMazeProblem(lvl.Layout)
		return search.Run(req.strategy, p, p.InitialState(), h, opts...), nil
	default:
		h, err := heuristic.ForDungeon(req.heuristic)
		if err != nil {
			return search.Result[game.Direction]{}, err
		}
		p := rules.NewDungeonProblem(lvl.Layout)
		return search.Run(req.strategy, p, p.InitialState(), h, opts...), nil
	}
}

// handleSearchStream runs one search and streams it over a websocket: a level
// event, an expand event per expanded state (or every Nth), then a result.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sender := &eventSender{conn: conn}
	fail := func(err error) {
		sender.send(stream.ErrorEvent{Type: stream.TypeError, Message: err.Error()})
		closeNormally(conn)
	}

	req, err := parseStreamRequest(r.URL.Query())
	if err != nil {
		fail(err)
		return
	}
	lvl, err := s.level(req.level)
	if err != nil {
		fail(err)
		return
	}
	sender.layout = lvl.Layout
	sender.every = req.every

	sender.send(stream.LevelEvent{
		Type:      stream.TypeLevel,
		Level:     levelInfo(lvl, true),
		Problem:   req.problem,
		Strategy:  req.strategy.String(),
		Heuristic: req.heuristic,
	})

	res, err := runSearch(req, lvl,
		search.WithMaxExpansions(req.maxExpansions),
		search.WithTimeLimit(req.timeLimit),
		search.WithObserver(sender.observe),
	)
	if err != nil {
		fail(err)
		return
	}

	sender.send(stream.ResultEvent{
		Type:      stream.TypeResult,
		Status:    res.Status.String(),
		Cost:      res.Cost,
		Path:      game.FormatPath(res.Path),
		Expanded:  res.Expanded,
		Generated: res.Generated,
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	})
	if sender.err != nil {
		log.Printf("search stream for %s ended early: %v", req.level, sender.err)
		return
	}
	closeNormally(conn)
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
