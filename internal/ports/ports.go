package ports

import (
	"context"

	"ContentPipeline/internal/domain"
)

// Completion is a single LLM answer with the provider-reported usage.
type Completion struct {
	Content string
	Usage   domain.TokenUsage
}

// ChatClient sends one prompt to an LLM provider and returns its answer.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// SearchClient queries a web-search provider for ranked results.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error)
}

// PageFetcher downloads a page and returns its visible text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// TextSplitter cuts long text into bounded, overlapping chunks.
type TextSplitter interface {
	Split(text string) []string
}

// ArtifactStore persists stage outputs under a topic-scoped directory.
type ArtifactStore interface {
	WriteJSON(topicID, name string, v any) error
	WriteText(topicID, name, content string) error
	Path(topicID, name string) string
}

// FixtureSource serves static stage outputs for simulation mode.
type FixtureSource interface {
	ReadFixture(name string) ([]byte, error)
}

// RunRecorder persists a summary of every orchestration run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run domain.RunRecord) error
}

// RunHistory lists previously recorded runs, newest first.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
