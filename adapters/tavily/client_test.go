package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.APIKey != "key-123" || req.Query != "what is lodestar" {
			t.Errorf("unexpected request body: %+v", req)
		}
		if req.MaxResults != 3 {
			t.Errorf("max_results = %d, want 3", req.MaxResults)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"title": "a", "url": "http://a", "content": "first snippet", "score": 0.9},
			{"title": "b", "url": "http://b", "content": "second snippet", "score": 0.7}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "key-123", MaxResults: 3})
	snippets, err := client.Search(context.Background(), "what is lodestar")
	if err != nil {
		t.Fatal(err)
	}
	if len(snippets) != 2 || snippets[0] != "first snippet" || snippets[1] != "second snippet" {
		t.Errorf("snippets = %v", snippets)
	}
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "bad"})
	_, err := client.Search(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Errorf("error = %v, want status 401", err)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.tavily.com/"})
	if client.Config.BaseURL != "https://api.tavily.com" {
		t.Errorf("base url = %q", client.Config.BaseURL)
	}
}
