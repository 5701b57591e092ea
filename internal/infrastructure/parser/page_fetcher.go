package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/ports"
)

// PageFetcher downloads HTML pages and extracts their readable text.
type PageFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.PageFetcher = (*PageFetcher)(nil)

// NewPageFetcher wires an HTTP client; a nil client gets the configured timeout.
func NewPageFetcher(client *http.Client, cfg config.ScraperConfig) *PageFetcher {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ContentPipeline/1.0"
	}
	return &PageFetcher{client: client, userAgent: userAgent}
}

// FetchText returns the visible text of the page at pageURL.
func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return ExtractText(doc), nil
}

func (f *PageFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// ExtractText drops non-content elements and returns the body text with
// lines trimmed and blank-line runs collapsed to one paragraph break.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template, svg, iframe").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var (
		b     strings.Builder
		blank bool
	)
	for _, line := range strings.Split(root.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		blank = false
		b.WriteString(line)
	}
	return b.String()
}
