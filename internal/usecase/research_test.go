package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/textsplit"
	"ContentPipeline/internal/topic"
)

func TestResearchStageSkipsFailedURLs(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{results: []domain.SearchResult{
		{URL: "https://ok-one.example"},
		{URL: "https://broken.example"},
		{URL: "https://ok-two.example"},
	}}
	fetcher := fakeFetcher{pages: map[string]string{
		"https://ok-one.example": "alpha beta",
		"https://ok-two.example": "gamma",
	}}
	store := storage.NewFileStore(t.TempDir())

	stage := NewResearchStage(5, ResearchDeps{Search: search, Fetcher: fetcher, Splitter: wordSplitter{}, Store: store})
	tp := topic.New("The Future of AI!")

	res, err := stage.Execute(context.Background(), tp)
	require.NoError(t, err)

	require.Equal(t, []string{"The Future of AI!"}, search.queries)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, res.Chunks)
	require.Len(t, res.Sources, 3)
	require.Equal(t, "https://broken.example", res.Sources[1].URL)
	require.Equal(t, noContentPreview, res.Sources[1].ContentPreview)
	require.Equal(t, "alpha beta", res.Sources[0].ContentPreview)

	var persisted []domain.Source
	require.NoError(t, json.Unmarshal([]byte(readArtifact(t, store, tp.ID, storage.SourcesFile)), &persisted))
	require.Equal(t, res.Sources, persisted)

	var chunks []string
	require.NoError(t, json.Unmarshal([]byte(readArtifact(t, store, tp.ID, storage.ChunksFile)), &chunks))
	require.Equal(t, res.Chunks, chunks)
}

func TestResearchStageWithRealSplitter(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("research sentence ", 200)
	search := &fakeSearch{results: []domain.SearchResult{{URL: "https://a.example"}, {URL: "https://b.example"}}}
	fetcher := fakeFetcher{pages: map[string]string{"https://a.example": long}}
	store := storage.NewFileStore(t.TempDir())

	stage := NewResearchStage(0, ResearchDeps{
		Search:   search,
		Fetcher:  fetcher,
		Splitter: textsplit.New(textsplit.DefaultChunkSize, textsplit.DefaultChunkOverlap),
		Store:    store,
	})

	res, err := stage.Execute(context.Background(), topic.New("splitting"))
	require.NoError(t, err)
	require.Greater(t, len(res.Chunks), 1)
	require.Len(t, []rune(res.Sources[0].ContentPreview), previewRunes)
	require.Equal(t, noContentPreview, res.Sources[1].ContentPreview)
}

func TestResearchStageNoContentWritesEmptyChunks(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{results: []domain.SearchResult{{URL: "https://down.example"}}}
	store := storage.NewFileStore(t.TempDir())
	stage := NewResearchStage(5, ResearchDeps{Search: search, Fetcher: fakeFetcher{}, Splitter: wordSplitter{}, Store: store})

	res, err := stage.Execute(context.Background(), topic.New("offline"))
	require.NoError(t, err)
	require.Empty(t, res.Chunks)
	require.Equal(t, "[]", readArtifact(t, store, "offline", storage.ChunksFile))
}

func TestResearchStageSearchFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("search quota exceeded")
	store := storage.NewFileStore(t.TempDir())
	stage := NewResearchStage(5, ResearchDeps{Search: &fakeSearch{err: boom}, Fetcher: fakeFetcher{}, Splitter: wordSplitter{}, Store: store})

	_, err := stage.Execute(context.Background(), topic.New("anything"))
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(store.Path("anything", storage.SourcesFile))
	require.True(t, os.IsNotExist(statErr), "sources.json must not be written when search fails")
}
