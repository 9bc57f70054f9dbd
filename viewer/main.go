// Command viewer serves levels and benchmark results over HTTP and streams
// live searches over a websocket.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brensch/gridsearch/logging"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", "127.0.0.1:8080", "HTTP listen address")
	levelDir := fs.String("levels", "levels", "Directory of level .txt files")
	dataDirs := fs.String("data-dirs", "data/runs", "Comma-separated list of directories containing run parquet batches")
	staticDir := fs.String("static-dir", "", "Optional directory to serve as SPA static (e.g. viewer/web/dist)")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("flag parse: %v", err)
	}
	slog.SetDefault(logging.New(os.Stderr, level, false))

	roots := parseDataRoots(*dataDirs)
	log.Printf("Viewer levels: %s, data roots: %s", *levelDir, strings.Join(roots, ","))

	server := NewServer(*levelDir, roots)
	defer server.Close()

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	if strings.TrimSpace(*staticDir) != "" {
		mux.Handle("/", spaHandler{staticPath: *staticDir, indexPath: filepath.Join(*staticDir, "index.html")})
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("Viewer API listening on http://%s", *listen)
	log.Fatal(srv.ListenAndServe())
}
