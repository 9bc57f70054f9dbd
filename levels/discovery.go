package levels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Discoverer finds level files linked from an HTML index page and downloads
// them.
type Discoverer struct {
	IndexURL     string
	RequestDelay time.Duration // pause between downloads
	MaxLevels    int           // 0 means unlimited
	Client       *http.Client
}

func NewDiscoverer(indexURL string) *Discoverer {
	return &Discoverer{
		IndexURL:     indexURL,
		RequestDelay: 200 * time.Millisecond,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Discover returns the absolute URLs of every level file linked from the
// index, in page order and without duplicates.
func (d *Discoverer) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(d.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}

	body, err := d.get(ctx, d.IndexURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.EqualFold(path.Ext(ref.Path), Ext) {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	})

	if d.MaxLevels > 0 && len(urls) > d.MaxLevels {
		urls = urls[:d.MaxLevels]
	}
	slog.Info("discovered levels", "index", d.IndexURL, "count", len(urls))
	return urls, nil
}

// Fetch downloads and parses a single level.
func (d *Discoverer) Fetch(ctx context.Context, levelURL string) (Level, error) {
	body, err := d.get(ctx, levelURL)
	if err != nil {
		return Level{}, err
	}
	defer body.Close()

	u, err := url.Parse(levelURL)
	if err != nil {
		return Level{}, fmt.Errorf("parse level url: %w", err)
	}
	return Parse(NameFromPath(u.Path), body)
}

// FetchAll discovers and downloads every level. Levels that fail to download
// or parse are logged and skipped.
func (d *Discoverer) FetchAll(ctx context.Context) ([]Level, error) {
	urls, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Level, 0, len(urls))
	for i, u := range urls {
		if i > 0 && d.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(d.RequestDelay):
			}
		}
		lvl, err := d.Fetch(ctx, u)
		if err != nil {
			slog.Warn("skipping level", "url", u, "err", err)
			continue
		}
		out = append(out, lvl)
	}
	return out, nil
}

func (d *Discoverer) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "gridsearch/1.0 (level-fetcher)")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status code: %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}
