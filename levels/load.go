// Package levels loads level files from disk and discovers level packs
// published as plain HTML directory listings.
package levels

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brensch/gridsearch/game"
)

// Ext is the file extension of a level file.
const Ext = ".txt"

// Level is a named layout.
type Level struct {
	Name   string
	Layout *game.Layout
}

// Parse reads one level in the text format.
func Parse(name string, r io.Reader) (Level, error) {
	l, err := game.ParseLayout(r)
	if err != nil {
		return Level{}, fmt.Errorf("level %s: %w", name, err)
	}
	return Level{Name: name, Layout: l}, nil
}

// LoadFile reads a level file. The level is named after the file without its
// extension.
func LoadFile(path string) (Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return Level{}, fmt.Errorf("open level: %w", err)
	}
	defer f.Close()
	return Parse(NameFromPath(path), f)
}

// LoadDir reads every level file directly inside dir, sorted by name.
func LoadDir(dir string) ([]Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read level dir: %w", err)
	}

	var out []Level
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		lvl, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save writes a level into dir as <name>.txt.
func Save(dir string, lvl Level) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create level dir: %w", err)
	}
	path := filepath.Join(dir, lvl.Name+Ext)
	if err := os.WriteFile(path, []byte(lvl.Layout.String()), 0o644); err != nil {
		return "", fmt.Errorf("write level: %w", err)
	}
	return path, nil
}

// NameFromPath strips the directory and extension from a level path or URL.
func NameFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
