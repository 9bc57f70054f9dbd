package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds client timeouts.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration // max silence between two messages
}

func DefaultConfig() Config {
	return Config{ConnectTimeout: 10 * time.Second, ReadTimeout: 30 * time.Second}
}

// Query selects the search a stream runs.
type Query struct {
	Level     string
	Problem   string
	Strategy  string
	Heuristic string
	Max       int // expansion budget, 0 for the server default
	Every     int // stream every Nth expansion, 0 for all
}

// SearchURL builds the websocket URL of the search stream on a viewer whose
// HTTP base is base (http://host:port).
func SearchURL(base string, q Query) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/ws/search")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	v := url.Values{}
	v.Set("level", q.Level)
	for key, val := range map[string]string{"problem": q.Problem, "strategy": q.Strategy, "heuristic": q.Heuristic} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if q.Max > 0 {
		v.Set("max", strconv.Itoa(q.Max))
	}
	if q.Every > 0 {
		v.Set("every", strconv.Itoa(q.Every))
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// Handler receives events as they arrive. Nil callbacks are skipped.
type Handler struct {
	OnLevel  func(LevelEvent)
	OnExpand func(ExpandEvent)
}

// ErrNoResult is returned when the server closes the stream without sending
// a result.
var ErrNoResult = errors.New("stream closed before result")

// Watch connects to a search stream and consumes it until the server closes
// the connection.
func Watch(ctx context.Context, wsURL string, cfg Config, h Handler) (ResultEvent, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return ResultEvent{}, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var result *ResultEvent
	for {
		if cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if ctx.Err() != nil {
				return ResultEvent{}, ctx.Err()
			}
			if result != nil {
				break
			}
			return ResultEvent{}, fmt.Errorf("read error: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			slog.Warn("failed to parse event", "err", err)
			continue
		}

		switch env.Type {
		case TypeLevel:
			var ev LevelEvent
			if err := json.Unmarshal(message, &ev); err != nil {
				return ResultEvent{}, fmt.Errorf("parse level event: %w", err)
			}
			if h.OnLevel != nil {
				h.OnLevel(ev)
			}
		case TypeExpand:
			var ev ExpandEvent
			if err := json.Unmarshal(message, &ev); err != nil {
				return ResultEvent{}, fmt.Errorf("parse expand event: %w", err)
			}
			if h.OnExpand != nil {
				h.OnExpand(ev)
			}
		case TypeResult:
			var ev ResultEvent
			if err := json.Unmarshal(message, &ev); err != nil {
				return ResultEvent{}, fmt.Errorf("parse result event: %w", err)
			}
			result = &ev
		case TypeError:
			var ev ErrorEvent
			_ = json.Unmarshal(message, &ev)
			return ResultEvent{}, fmt.Errorf("server error: %s", ev.Message)
		default:
			slog.Debug("ignoring event", "type", env.Type)
		}
	}

	if result == nil {
		return ResultEvent{}, ErrNoResult
	}
	return *result, nil
}
