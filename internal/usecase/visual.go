package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/ports"
)

// VisualAssetStage asks the LLM for a shot list that matches the script.
type VisualAssetStage struct {
	llm    ports.ChatClient
	store  ports.ArtifactStore
	logger *slog.Logger
}

// NewVisualAssetStage builds the stage.
func NewVisualAssetStage(llm ports.ChatClient, store ports.ArtifactStore, logger *slog.Logger) *VisualAssetStage {
	return &VisualAssetStage{llm: llm, store: store, logger: loggerOrDiscard(logger)}
}

// Execute writes shotlist.json. When the answer is not JSON the raw text is
// stored verbatim and the result is marked degraded.
func (v *VisualAssetStage) Execute(ctx context.Context, topic domain.Topic, script string) (domain.StageResult, error) {
	v.logger.Info("suggesting visual assets")

	prompt, err := renderPrompt(visualPrompt, struct{ Topic, Script string }{Topic: topic.Name, Script: script})
	if err != nil {
		return domain.StageResult{}, err
	}

	completion, err := v.llm.Complete(ctx, prompt)
	if err != nil {
		return domain.StageResult{}, fmt.Errorf("visual assets completion: %w", err)
	}

	content, outcome := normalizeShotList(completion.Content)
	if outcome == domain.OutcomeDegraded {
		v.logger.Warn("shot list is not valid JSON, saving as plain text")
	}

	if err := v.store.WriteText(topic.ID, storage.ShotListFile, content); err != nil {
		return domain.StageResult{}, err
	}
	v.logger.Info("visual assets complete", "outcome", outcome, "path", v.store.Path(topic.ID, storage.ShotListFile))

	return domain.StageResult{
		Stage:   domain.StageVisualAssets,
		Content: content,
		Usage:   completion.Usage,
		Outcome: outcome,
	}, nil
}

// normalizeShotList returns indented JSON when raw (optionally wrapped in a
// Markdown code fence) parses, and raw unchanged otherwise.
func normalizeShotList(raw string) (string, domain.Outcome) {
	candidate := stripCodeFence(raw)

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(candidate), "", "    "); err != nil {
		return raw, domain.OutcomeDegraded
	}
	return buf.String(), domain.OutcomeSuccess
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
