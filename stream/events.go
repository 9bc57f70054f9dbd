// Package stream defines the JSON events of a live search stream and a
// websocket client that consumes them.
package stream

import (
	"strings"

	"github.com/brensch/gridsearch/game"
)

// Event types, carried in the "type" field of every message.
const (
	TypeLevel  = "level"
	TypeExpand = "expand"
	TypeResult = "result"
	TypeError  = "error"
)

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func FromPoint(p game.Point) Point { return Point{X: p.X, Y: p.Y} }

func FromPoints(ps []game.Point) []Point {
	out := make([]Point, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPoint(p))
	}
	return out
}

// LevelInfo describes a level. Rows holds the text form, top row first.
type LevelInfo struct {
	Name   string   `json:"name"`
	Width  int32    `json:"width"`
	Height int32    `json:"height"`
	Start  Point    `json:"start"`
	Exit   Point    `json:"exit"`
	Coins  []Point  `json:"coins"`
	Rows   []string `json:"rows,omitempty"`
}

// NewLevelInfo summarises a layout.
func NewLevelInfo(name string, l *game.Layout, withRows bool) LevelInfo {
	info := LevelInfo{
		Name:   name,
		Width:  l.Width,
		Height: l.Height,
		Start:  FromPoint(l.Start),
		Exit:   FromPoint(l.Exit),
		Coins:  FromPoints(l.Coins),
	}
	if withRows {
		info.Rows = strings.Split(strings.TrimSuffix(l.String(), "\n"), "\n")
	}
	return info
}

// Layout rebuilds the level from its rows.
func (i LevelInfo) Layout() (*game.Layout, error) {
	return game.ParseLayoutString(strings.Join(i.Rows, "\n"))
}

type envelope struct {
	Type string `json:"type"`
}

type LevelEvent struct {
	Type      string    `json:"type"`
	Level     LevelInfo `json:"level"`
	Problem   string    `json:"problem"`
	Strategy  string    `json:"strategy"`
	Heuristic string    `json:"heuristic"`
}

type ExpandEvent struct {
	Type      string  `json:"type"`
	Step      int     `json:"step"`
	Player    Point   `json:"player"`
	Remaining []Point `json:"remaining,omitempty"`
	Depth     int     `json:"depth"`
	G         float64 `json:"g"`
	Priority  float64 `json:"priority"`
	Frontier  int     `json:"frontier"`
}

type ResultEvent struct {
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Cost      float64 `json:"cost"`
	Path      string  `json:"path"`
	Expanded  int     `json:"expanded"`
	Generated int     `json:"generated"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
