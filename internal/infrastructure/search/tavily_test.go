package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
)

func TestTavilyClientSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query != "The future of AI" || req.MaxResults != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if r.Header.Get("Authorization") != "Bearer tvly-test" {
			t.Errorf("missing auth header")
		}
		_, _ = w.Write([]byte(`{"results": [
			{"title": "One", "url": "https://one.example", "score": 0.9},
			{"title": "No URL", "url": "", "score": 0.8},
			{"title": "Two", "url": "https://two.example", "score": 0.7},
			{"title": "Three", "url": "https://three.example", "score": 0.6}
		]}`))
	}))
	defer server.Close()

	client := NewTavilyClient(config.SearchConfig{Endpoint: server.URL, APIKey: "tvly-test"})
	got, err := client.Search(context.Background(), "The future of AI", 2)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	want := []domain.SearchResult{
		{URL: "https://one.example", Title: "One", Score: 0.9},
		{URL: "https://two.example", Title: "Two", Score: 0.7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestTavilyClientErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClient(config.SearchConfig{Endpoint: server.URL, APIKey: "bad"})
	if _, err := client.Search(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error on 401")
	}

	unconfigured := NewTavilyClient(config.SearchConfig{Endpoint: server.URL})
	if _, err := unconfigured.Search(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error without api key")
	}
}
