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
	defaultMaxChunks = 5

	// SummaryPlaceholder stands in for a chunk whose summary request failed.
	SummaryPlaceholder = "Error summarizing chunk."
)

// AnalysisResult is the narrative plus the per-chunk summaries behind it.
type AnalysisResult struct {
	domain.StageResult
	Summaries []domain.ChunkSummary
}

// AnalysisStage condenses research chunks into a Markdown narrative.
type AnalysisStage struct {
	llm       ports.ChatClient
	store     ports.ArtifactStore
	logger    *slog.Logger
	maxChunks int
}

// NewAnalysisStage builds the stage; maxChunks <= 0 means 5.
func NewAnalysisStage(maxChunks int, llm ports.ChatClient, store ports.ArtifactStore, logger *slog.Logger) *AnalysisStage {
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	return &AnalysisStage{
		llm:       llm,
		store:     store,
		logger:    loggerOrDiscard(logger),
		maxChunks: maxChunks,
	}
}

// Execute summarizes up to maxChunks chunks, synthesizes the narrative and
// writes narrative.md. Usage covers every summary call and the synthesis.
func (s *AnalysisStage) Execute(ctx context.Context, topic domain.Topic, chunks []string) (AnalysisResult, error) {
	s.logger.Info("analyzing research content", "chunks", len(chunks))

	summaries, usage := s.summarize(ctx, chunks)
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}

	texts := make([]string, len(summaries))
	outcome := domain.OutcomeSuccess
	for i, sum := range summaries {
		texts[i] = sum.Text
		if sum.Outcome != domain.OutcomeSuccess {
			outcome = domain.OutcomeDegraded
		}
	}

	prompt, err := renderPrompt(synthesisPrompt, struct{ Topic, Research string }{
		Topic:    topic.Name,
		Research: strings.Join(texts, "\n\n"),
	})
	if err != nil {
		return AnalysisResult{}, err
	}

	narrative, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("synthesize narrative: %w", err)
	}
	usage = usage.Add(narrative.Usage)

	if err := s.store.WriteText(topic.ID, storage.NarrativeFile, narrative.Content); err != nil {
		return AnalysisResult{}, err
	}
	s.logger.Info("analysis complete", "outcome", outcome, "path", s.store.Path(topic.ID, storage.NarrativeFile))

	return AnalysisResult{
		StageResult: domain.StageResult{
			Stage:   domain.StageAnalysis,
			Content: narrative.Content,
			Usage:   usage,
			Outcome: outcome,
		},
		Summaries: summaries,
	}, nil
}

func (s *AnalysisStage) summarize(ctx context.Context, chunks []string) ([]domain.ChunkSummary, domain.TokenUsage) {
	limit := len(chunks)
	if limit > s.maxChunks {
		s.logger.Debug("dropping chunks over cap", "cap", s.maxChunks, "dropped", limit-s.maxChunks)
		limit = s.maxChunks
	}

	var usage domain.TokenUsage
	summaries := make([]domain.ChunkSummary, 0, limit)
	for i, chunk := range chunks[:limit] {
		if ctx.Err() != nil {
			break
		}

		prompt, err := renderPrompt(summaryPrompt, struct{ Text string }{Text: chunk})
		if err == nil {
			var completion ports.Completion
			completion, err = s.llm.Complete(ctx, prompt)
			if err == nil {
				usage = usage.Add(completion.Usage)
				summaries = append(summaries, domain.ChunkSummary{Index: i, Text: completion.Content, Outcome: domain.OutcomeSuccess})
				s.logger.Debug("summarized chunk", "chunk", i+1, "of", limit)
				continue
			}
		}

		s.logger.Warn("summarizing chunk failed", "chunk", i+1, "error", err)
		summaries = append(summaries, domain.ChunkSummary{Index: i, Text: SummaryPlaceholder, Outcome: domain.OutcomeFailed, Err: err})
	}
	return summaries, usage
}
