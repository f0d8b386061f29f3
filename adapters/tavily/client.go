// Package tavily implements the web search capability against the Tavily
// search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"lodestar/internal/logging"
)

// Config holds Tavily API connection settings.
type Config struct {
	BaseURL    string // e.g. https://api.tavily.com
	APIKey     string
	MaxResults int // results per query; 0 means the API default
}

// Client is a Tavily search client.
type Client struct {
	HTTPClient *http.Client
	Config     Config
	log        *slog.Logger
}

// NewClient returns a client with the given config. A nil HTTPClient uses
// http.DefaultClient.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &Client{Config: cfg, HTTPClient: http.DefaultClient, log: logging.New("tavily")}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one web search and returns the result snippets in API order.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:     c.Config.APIKey,
		Query:      query,
		MaxResults: c.Config.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily response: %w", err)
	}

	snippets := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		snippets = append(snippets, r.Content)
	}
	c.log.Debug("search completed", "query", query, "results", len(snippets))
	return snippets, nil
}
