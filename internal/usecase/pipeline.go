package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/topic"
)

// PipelineDeps wires all stages and driven adapters into the orchestrator.
// LLM-backed stages may be nil when Simulate is set.
type PipelineDeps struct {
	Research *ResearchStage
	Analysis *AnalysisStage
	Script   *DraftStage
	Article  *DraftStage
	Visual   *VisualAssetStage

	Store    ports.ArtifactStore
	Fixtures ports.FixtureSource
	Recorder ports.RunRecorder
	Logger   *slog.Logger

	Simulate bool
	Now      func() time.Time
	NewRunID func() string
}

// Pipeline runs research → analysis → {script, article} → visual assets.
type Pipeline struct {
	research *ResearchStage
	analysis *AnalysisStage
	script   *DraftStage
	article  *DraftStage
	visual   *VisualAssetStage

	store    ports.ArtifactStore
	fixtures ports.FixtureSource
	recorder ports.RunRecorder
	logger   *slog.Logger

	simulate bool
	now      func() time.Time
	newRunID func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		research: deps.Research,
		analysis: deps.Analysis,
		script:   deps.Script,
		article:  deps.Article,
		visual:   deps.Visual,
		store:    deps.Store,
		fixtures: deps.Fixtures,
		recorder: deps.Recorder,
		logger:   loggerOrDiscard(deps.Logger),
		simulate: deps.Simulate,
		now:      deps.Now,
		newRunID: deps.NewRunID,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = func() string { return uuid.New().String() }
	}
	return p
}

// Simulated reports whether LLM-backed stages read fixtures.
func (p *Pipeline) Simulated() bool { return p.simulate }

// Run executes every stage for the topic and returns the aggregated result.
// The run is recorded in the ledger whether it succeeds or not.
func (p *Pipeline) Run(ctx context.Context, name string) (domain.PipelineResult, error) {
	t := topic.New(name)
	started := p.now()

	result := domain.PipelineResult{
		RunID:  p.newRunID(),
		Topic:  t,
		Usage:  map[string]domain.TokenUsage{},
		Stages: map[string]domain.StageResult{},
	}

	logger := p.logger.With("run_id", result.RunID, "topic_id", t.ID)
	logger.Info("pipeline started", "topic", t.Name, "simulated", p.simulate)

	err := p.run(ctx, t, &result)

	p.record(ctx, result, started, err)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return result, err
	}

	logger.Info("pipeline finished", "duration", p.now().Sub(started).Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, t domain.Topic, result *domain.PipelineResult) error {
	if t.ID == "" {
		return ErrEmptyTopic
	}

	research, err := p.research.Execute(ctx, t)
	if err != nil {
		return stageErr(domain.StageResearch, err)
	}
	result.Sources = research.Sources

	narrative, err := p.runAnalysis(ctx, t, research.Chunks)
	if err != nil {
		return stageErr(domain.StageAnalysis, err)
	}
	p.keep(result, narrative)
	result.Narrative = narrative.Content

	script, article, err := p.runDrafts(ctx, t, narrative.Content)
	if err != nil {
		return err
	}
	p.keep(result, script)
	p.keep(result, article)
	result.Script = script.Content
	result.Article = article.Content

	visual, err := p.runVisual(ctx, t, script.Content)
	if err != nil {
		return stageErr(domain.StageVisualAssets, err)
	}
	p.keep(result, visual)
	result.VisualAssets = visual.Content
	result.VisualOutcome = visual.Outcome

	return nil
}

// runDrafts runs scriptwriting and article writing concurrently; the first
// failure cancels the sibling.
func (p *Pipeline) runDrafts(ctx context.Context, t domain.Topic, narrative string) (domain.StageResult, domain.StageResult, error) {
	var script, article domain.StageResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := p.runDraft(gctx, t, p.script, domain.StageScriptwriting, storage.ScriptFile, narrative)
		script = r
		return stageErr(domain.StageScriptwriting, err)
	})
	g.Go(func() error {
		r, err := p.runDraft(gctx, t, p.article, domain.StageArticleWriting, storage.ArticleFile, narrative)
		article = r
		return stageErr(domain.StageArticleWriting, err)
	})

	if err := g.Wait(); err != nil {
		return domain.StageResult{}, domain.StageResult{}, err
	}
	return script, article, nil
}

func (p *Pipeline) runAnalysis(ctx context.Context, t domain.Topic, chunks []string) (domain.StageResult, error) {
	if p.simulate {
		return p.fromFixture(t, domain.StageAnalysis, storage.NarrativeFile)
	}
	res, err := p.analysis.Execute(ctx, t, chunks)
	if err != nil {
		return domain.StageResult{}, err
	}
	return res.StageResult, nil
}

func (p *Pipeline) runDraft(ctx context.Context, t domain.Topic, stage *DraftStage, name, file, narrative string) (domain.StageResult, error) {
	if p.simulate {
		return p.fromFixture(t, name, file)
	}
	return stage.Execute(ctx, t, narrative)
}

func (p *Pipeline) runVisual(ctx context.Context, t domain.Topic, script string) (domain.StageResult, error) {
	if !p.simulate {
		return p.visual.Execute(ctx, t, script)
	}
	res, err := p.fromFixture(t, domain.StageVisualAssets, storage.ShotListFile)
	if err != nil {
		return res, err
	}
	if !json.Valid([]byte(res.Content)) {
		res.Outcome = domain.OutcomeDegraded
	}
	return res, nil
}

// fromFixture copies a fixture into the topic directory in place of an LLM call.
func (p *Pipeline) fromFixture(t domain.Topic, stage, file string) (domain.StageResult, error) {
	raw, err := p.fixtures.ReadFixture(file)
	if err != nil {
		return domain.StageResult{}, err
	}
	if err := p.store.WriteText(t.ID, file, string(raw)); err != nil {
		return domain.StageResult{}, err
	}
	p.logger.Info("stage simulated", "stage", stage, "path", p.store.Path(t.ID, file))

	return domain.StageResult{
		Stage:     stage,
		Content:   string(raw),
		Outcome:   domain.OutcomeSuccess,
		Simulated: true,
	}, nil
}

func (p *Pipeline) keep(result *domain.PipelineResult, stage domain.StageResult) {
	result.Stages[stage.Stage] = stage
	result.Usage[stage.Stage] = stage.Usage
}

func (p *Pipeline) record(ctx context.Context, result domain.PipelineResult, started time.Time, runErr error) {
	if p.recorder == nil {
		return
	}

	rec := domain.RunRecord{
		ID:         result.RunID,
		Topic:      result.Topic,
		Simulated:  p.simulate,
		Status:     domain.RunSucceeded,
		StartedAt:  started,
		FinishedAt: p.now(),
		Usage:      result.Usage,
	}
	if runErr != nil {
		rec.Status = domain.RunFailed
		rec.Error = runErr.Error()
	}

	if err := p.recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		p.logger.Warn("recording run failed", "run_id", result.RunID, "error", err)
	}
}
