package levels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brensch/gridsearch/game"
)

const room = `
#######
#@.$..#
#..#..#
#$...E#
#######
`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b-room.txt": room,
		"a-line.txt": "@.$.E\n",
		"notes.md":   "# not a level",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	lvls, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lvls) != 2 || lvls[0].Name != "a-line" || lvls[1].Name != "b-room" {
		t.Fatalf("levels %+v", lvls)
	}
	if got := len(lvls[1].Layout.Coins); got != 2 {
		t.Fatalf("room has %d coins, want 2", got)
	}
}

func TestLoadDir_BadLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("...\n.$.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatalf("expected error for a level without a start")
	}
}

func TestSaveAndLoad(t *testing.T) {
	l, err := game.Generate(nil, game.DefaultGenerateSettings, 11)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	dir := t.TempDir()
	path, err := Save(dir, Level{Name: "gen-011", Layout: l})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	lvl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Name != "gen-011" || lvl.Layout.String() != l.String() {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", lvl.Layout, l)
	}
}

func TestNameFromPath(t *testing.T) {
	for in, want := range map[string]string{
		"levels/room.txt":          "room",
		`C:\levels\hall.txt`:       "hall",
		"/packs/easy/corridor.TXT": "corridor",
		"plain":                    "plain",
	} {
		if got := NameFromPath(in); got != want {
			t.Errorf("NameFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscoverer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/packs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="room.txt">room</a>
			<a href="/packs/line.txt">line</a>
			<a href="room.txt">duplicate</a>
			<a href="readme.html">readme</a>
			<a href="v1.txt/notes">directory with a dotted name</a>
			<a href="missing.txt">missing</a>
			<a>no href</a>
		</body></html>`)
	})
	mux.HandleFunc("/packs/room.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, room)
	})
	mux.HandleFunc("/packs/line.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "@.$.E\n")
	})
	mux.HandleFunc("/packs/missing.txt", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewDiscoverer(srv.URL + "/packs/")
	d.RequestDelay = 0
	d.Client = srv.Client()

	urls, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{srv.URL + "/packs/room.txt", srv.URL + "/packs/line.txt", srv.URL + "/packs/missing.txt"}
	if fmt.Sprint(urls) != fmt.Sprint(want) {
		t.Fatalf("urls %v, want %v", urls, want)
	}

	lvls, err := d.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(lvls) != 2 || lvls[0].Name != "room" || lvls[1].Name != "line" {
		t.Fatalf("levels %+v", lvls)
	}

	d.MaxLevels = 1
	if urls, _ := d.Discover(context.Background()); len(urls) != 1 {
		t.Fatalf("max levels ignored: %v", urls)
	}
}

func TestDiscoverer_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDiscoverer(srv.URL)
	if _, err := d.Discover(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
