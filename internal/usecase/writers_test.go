package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/topic"
)

func TestDraftStages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		build  func(*fakeChat, *storage.FileStore) *DraftStage
		stage  string
		file   string
		answer string
		marker string
	}{
		{
			name:   "script",
			build:  func(c *fakeChat, s *storage.FileStore) *DraftStage { return NewScriptwritingStage(c, s, nil) },
			stage:  domain.StageScriptwriting,
			file:   storage.ScriptFile,
			answer: "This is a mock script.",
			marker: "video scriptwriter",
		},
		{
			name:   "article",
			build:  func(c *fakeChat, s *storage.FileStore) *DraftStage { return NewArticleWritingStage(c, s, nil) },
			stage:  domain.StageArticleWriting,
			file:   storage.ArticleFile,
			answer: "This is a mock article.",
			marker: "web journalist",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			chat := &fakeChat{
				usage:   domain.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
				respond: func(string) (string, error) { return tc.answer, nil },
			}
			store := storage.NewFileStore(t.TempDir())
			tp := topic.New("The future of AI")

			stage := tc.build(chat, store)
			require.Equal(t, tc.stage, stage.Name())

			res, err := stage.Execute(context.Background(), tp, "# The Future of AI\n\nA placeholder narrative.")
			require.NoError(t, err)
			require.Equal(t, tc.answer, res.Content)
			require.Equal(t, tc.stage, res.Stage)
			require.Equal(t, 30, res.Usage.TotalTokens)
			require.Equal(t, tc.answer, readArtifact(t, store, tp.ID, tc.file))

			prompts := chat.calls()
			require.Len(t, prompts, 1)
			require.Contains(t, prompts[0], tc.marker)
			require.Contains(t, prompts[0], "A placeholder narrative.")
		})
	}
}

func TestDraftStagePropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("invalid api key")
	chat := &fakeChat{respond: func(string) (string, error) { return "", boom }}

	_, err := NewArticleWritingStage(chat, storage.NewFileStore(t.TempDir()), nil).
		Execute(context.Background(), topic.New("x"), "narrative")
	require.ErrorIs(t, err, boom)
}
