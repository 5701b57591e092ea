package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// TavilyClient implements ports.SearchClient against the Tavily search API.
type TavilyClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SearchClient = (*TavilyClient)(nil)

// NewTavilyClient creates a reusable HTTP client.
func NewTavilyClient(cfg config.SearchConfig) *TavilyClient {
	return &TavilyClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title string  `json:"title"`
		URL   string  `json:"url"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Search returns up to maxResults ranked URLs for query.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily api key is not configured")
	}

	body, err := json.Marshal(tavilyRequest{Query: query, MaxResults: maxResults, SearchDepth: "basic"})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tavily error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, domain.SearchResult{URL: r.URL, Title: r.Title, Score: r.Score})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results, nil
}
