package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/gridsearch/game"
)

// scripted serves the given messages on every connection, then closes it.
func scripted(t *testing.T, msgs []any, closeCode int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range msgs {
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		}
		msg := websocket.FormatCloseMessage(closeCode, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/search"
}

func TestWatch(t *testing.T) {
	srv := scripted(t, []any{
		LevelEvent{Type: TypeLevel, Level: LevelInfo{Name: "line", Rows: []string{"@.E"}}, Strategy: "astar"},
		ExpandEvent{Type: TypeExpand, Step: 1, Player: Point{X: 0, Y: 0}},
		map[string]any{"type": "heartbeat"},
		ExpandEvent{Type: TypeExpand, Step: 2, Player: Point{X: 1, Y: 0}},
		ResultEvent{Type: TypeResult, Status: "solved", Cost: 2, Path: "RR", Expanded: 2},
	}, websocket.CloseNormalClosure)

	var level LevelEvent
	var steps []int
	res, err := Watch(context.Background(), wsURL(srv), DefaultConfig(), Handler{
		OnLevel:  func(ev LevelEvent) { level = ev },
		OnExpand: func(ev ExpandEvent) { steps = append(steps, ev.Step) },
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if res.Status != "solved" || res.Path != "RR" || res.Cost != 2 {
		t.Fatalf("result %+v", res)
	}
	if level.Level.Name != "line" || level.Strategy != "astar" {
		t.Fatalf("level %+v", level)
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Fatalf("steps %v", steps)
	}
}

func TestWatch_NilHandlers(t *testing.T) {
	srv := scripted(t, []any{
		LevelEvent{Type: TypeLevel},
		ExpandEvent{Type: TypeExpand, Step: 1},
		ResultEvent{Type: TypeResult, Status: "no_solution", Expanded: 1},
	}, websocket.CloseGoingAway)

	res, err := Watch(context.Background(), wsURL(srv), DefaultConfig(), Handler{})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if res.Status != "no_solution" {
		t.Fatalf("result %+v", res)
	}
}

func TestWatch_ServerError(t *testing.T) {
	srv := scripted(t, []any{
		ErrorEvent{Type: TypeError, Message: "unknown level \"nope\""},
	}, websocket.CloseNormalClosure)

	_, err := Watch(context.Background(), wsURL(srv), DefaultConfig(), Handler{})
	if err == nil || !strings.Contains(err.Error(), "unknown level") {
		t.Fatalf("err = %v", err)
	}
}

func TestWatch_NoResult(t *testing.T) {
	srv := scripted(t, []any{LevelEvent{Type: TypeLevel}}, websocket.CloseNormalClosure)

	_, err := Watch(context.Background(), wsURL(srv), DefaultConfig(), Handler{})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v", err)
	}
}

func TestWatch_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Watch(context.Background(), wsURL(srv), DefaultConfig(), Handler{}); err == nil {
		t.Fatal("expected handshake error")
	}
}

func TestSearchURL(t *testing.T) {
	got, err := SearchURL("http://localhost:8080/", Query{Level: "a b", Strategy: "astar", Max: 50, Every: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := "ws://localhost:8080/ws/search?every=10&level=a+b&max=50&strategy=astar"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	got, err = SearchURL("https://example.com", Query{Level: "x"})
	if err != nil || got != "wss://example.com/ws/search?level=x" {
		t.Fatalf("got %s, %v", got, err)
	}

	if _, err := SearchURL("ftp://example.com", Query{Level: "x"}); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestLevelInfoRoundTrip(t *testing.T) {
	text := "#####\n#@.$#\n#.#.#\n#..E#\n#####\n"
	l, err := game.ParseLayoutString(text)
	if err != nil {
		t.Fatal(err)
	}
	info := NewLevelInfo("box", l, true)
	if info.Width != 5 || info.Height != 5 || len(info.Rows) != 5 || len(info.Coins) != 1 {
		t.Fatalf("info %+v", info)
	}
	if info.Start != (Point{X: 1, Y: 3}) || info.Exit != (Point{X: 3, Y: 1}) {
		t.Fatalf("start %v exit %v", info.Start, info.Exit)
	}

	back, err := info.Layout()
	if err != nil {
		t.Fatal(err)
	}
	if back.String() != text {
		t.Fatalf("round trip:\n%s", back.String())
	}
	if NewLevelInfo("box", l, false).Rows != nil {
		t.Fatal("rows should be omitted")
	}
}
