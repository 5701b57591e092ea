package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/ports"
)

type fakeSearch struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if maxResults > 0 && len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	text, ok := f.pages[url]
	if !ok {
		return "", errors.New("connection refused")
	}
	return text, nil
}

// wordSplitter makes every word its own chunk so tests can trace chunk provenance.
type wordSplitter struct{}

func (wordSplitter) Split(text string) []string {
	return strings.Fields(text)
}

type fakeChat struct {
	mu      sync.Mutex
	prompts []string
	usage   domain.TokenUsage
	respond func(prompt string) (string, error)
}

func (f *fakeChat) Complete(ctx context.Context, prompt string) (ports.Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.Completion{}, err
	}
	text, err := f.respond(prompt)
	if err != nil {
		return ports.Completion{}, err
	}
	return ports.Completion{Content: text, Usage: f.usage}, nil
}

func (f *fakeChat) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeChat) countContaining(substr string) int {
	n := 0
	for _, p := range f.calls() {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []domain.RunRecord
	err  error
}

func (f *fakeRecorder) RecordRun(_ context.Context, run domain.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

func readArtifact(t *testing.T, store *storage.FileStore, topicID, name string) string {
	t.Helper()
	raw, err := os.ReadFile(store.Path(topicID, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(raw)
}

func writeFixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return dir
}
