package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/ports"
)

const (
	defaultMaxResults = 5
	previewRunes      = 500
	noContentPreview  = "No content scraped"
)

// ResearchDeps wires the collaborators of the research stage.
type ResearchDeps struct {
	Search   ports.SearchClient
	Fetcher  ports.PageFetcher
	Splitter ports.TextSplitter
	Store    ports.ArtifactStore
	Logger   *slog.Logger
}

// ResearchStage searches the web for a topic and turns the pages into chunks.
type ResearchStage struct {
	search     ports.SearchClient
	fetcher    ports.PageFetcher
	splitter   ports.TextSplitter
	store      ports.ArtifactStore
	logger     *slog.Logger
	maxResults int
}

// NewResearchStage builds the stage; maxResults <= 0 means 5.
func NewResearchStage(maxResults int, deps ResearchDeps) *ResearchStage {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &ResearchStage{
		search:     deps.Search,
		fetcher:    deps.Fetcher,
		splitter:   deps.Splitter,
		store:      deps.Store,
		logger:     loggerOrDiscard(deps.Logger),
		maxResults: maxResults,
	}
}

// Execute runs search, scraping and chunking, and writes sources.json and
// research_chunks.json. Only a search failure aborts the stage; a URL that
// cannot be fetched is logged and contributes no text.
func (s *ResearchStage) Execute(ctx context.Context, topic domain.Topic) (domain.ResearchResult, error) {
	s.logger.Info("researching topic", "topic", topic.Name)

	results, err := s.search.Search(ctx, topic.Name, s.maxResults)
	if err != nil {
		return domain.ResearchResult{}, fmt.Errorf("search %q: %w", topic.Name, err)
	}
	s.logger.Debug("search finished", "urls", len(results))

	sources := make([]domain.Source, 0, len(results))
	texts := make([]string, 0, len(results))
	for _, r := range results {
		text, err := s.fetcher.FetchText(ctx, r.URL)
		if err != nil {
			s.logger.Warn("skipping source", "url", r.URL, "error", err)
			sources = append(sources, domain.Source{URL: r.URL, ContentPreview: noContentPreview})
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			sources = append(sources, domain.Source{URL: r.URL, ContentPreview: noContentPreview})
			continue
		}
		texts = append(texts, text)
		sources = append(sources, domain.Source{URL: r.URL, ContentPreview: preview(text, previewRunes)})
	}
	if err := ctx.Err(); err != nil {
		return domain.ResearchResult{}, err
	}

	chunks := s.splitter.Split(strings.Join(texts, " "))
	if chunks == nil {
		chunks = []string{}
	}

	if err := s.store.WriteJSON(topic.ID, storage.SourcesFile, sources); err != nil {
		return domain.ResearchResult{}, err
	}
	if err := s.store.WriteJSON(topic.ID, storage.ChunksFile, chunks); err != nil {
		return domain.ResearchResult{}, err
	}

	s.logger.Info("research complete",
		"sources", len(sources),
		"scraped", len(texts),
		"chunks", len(chunks),
		"path", s.store.Path(topic.ID, storage.SourcesFile))

	return domain.ResearchResult{Sources: sources, Chunks: chunks}, nil
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
