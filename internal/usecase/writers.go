package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/ports"
)

// DraftStage turns the narrative into a derivative Markdown document.
// Scriptwriting and article writing are both DraftStages.
type DraftStage struct {
	stage  string
	file   string
	prompt *template.Template
	llm    ports.ChatClient
	store  ports.ArtifactStore
	logger *slog.Logger
}

// NewScriptwritingStage writes script.md from the narrative.
func NewScriptwritingStage(llm ports.ChatClient, store ports.ArtifactStore, logger *slog.Logger) *DraftStage {
	return &DraftStage{
		stage:  domain.StageScriptwriting,
		file:   storage.ScriptFile,
		prompt: scriptPrompt,
		llm:    llm,
		store:  store,
		logger: loggerOrDiscard(logger),
	}
}

// NewArticleWritingStage writes article.md from the narrative.
func NewArticleWritingStage(llm ports.ChatClient, store ports.ArtifactStore, logger *slog.Logger) *DraftStage {
	return &DraftStage{
		stage:  domain.StageArticleWriting,
		file:   storage.ArticleFile,
		prompt: articlePrompt,
		llm:    llm,
		store:  store,
		logger: loggerOrDiscard(logger),
	}
}

// Name reports the stage name used for usage accounting.
func (d *DraftStage) Name() string { return d.stage }

// Execute prompts the LLM with the narrative and persists the answer.
func (d *DraftStage) Execute(ctx context.Context, topic domain.Topic, narrative string) (domain.StageResult, error) {
	d.logger.Info("drafting", "stage", d.stage)

	prompt, err := renderPrompt(d.prompt, struct{ Topic, Narrative string }{Topic: topic.Name, Narrative: narrative})
	if err != nil {
		return domain.StageResult{}, err
	}

	completion, err := d.llm.Complete(ctx, prompt)
	if err != nil {
		return domain.StageResult{}, fmt.Errorf("%s completion: %w", d.stage, err)
	}

	if err := d.store.WriteText(topic.ID, d.file, completion.Content); err != nil {
		return domain.StageResult{}, err
	}
	d.logger.Info("draft complete", "stage", d.stage, "path", d.store.Path(topic.ID, d.file))

	return domain.StageResult{
		Stage:   d.stage,
		Content: completion.Content,
		Usage:   completion.Usage,
		Outcome: domain.OutcomeSuccess,
	}, nil
}
