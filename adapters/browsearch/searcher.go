// Package browsearch implements the web search capability with a headless
// browser scraping DuckDuckGo Lite. It needs no API key, which makes it the
// fallback searcher when no Tavily key is configured.
package browsearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"lodestar/internal/logging"
)

const liteURL = "https://lite.duckduckgo.com/lite/"

// Options tunes the browser searcher. The zero value is usable.
type Options struct {
	Headless   bool
	Timeout    time.Duration // per-search budget; 0 means 30s
	MaxResults int           // snippets per query; 0 means 5
}

// Searcher drives a headless Chrome instance per search. Instances are
// cheap to create; the browser itself is launched lazily by chromedp.
type Searcher struct {
	opts Options
	log  *slog.Logger
}

// New returns a Searcher with the given options.
func New(opts Options) *Searcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &Searcher{opts: opts, log: logging.New("browsearch")}
}

// Search loads the DuckDuckGo Lite results page for the query and returns
// the result snippets in page order.
func (s *Searcher) Search(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	target := liteURL + "?q=" + url.QueryEscape(query)

	// The lite page renders results as .result-snippet table cells.
	js := `Array.from(document.querySelectorAll("td.result-snippet")).map(td => td.innerText)`

	var snippets []string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(js, &snippets),
	)
	if err != nil {
		return nil, fmt.Errorf("browser search: %w", err)
	}

	out := make([]string, 0, s.opts.MaxResults)
	for _, snip := range snippets {
		snip = strings.TrimSpace(snip)
		if snip == "" {
			continue
		}
		out = append(out, snip)
		if len(out) == s.opts.MaxResults {
			break
		}
	}
	s.log.Debug("search completed", "query", query, "results", len(out))
	return out, nil
}
