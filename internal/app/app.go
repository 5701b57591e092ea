package app

import (
	"context"
	"fmt"
	"log/slog"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/infrastructure/llm"
	"ContentPipeline/internal/infrastructure/parser"
	"ContentPipeline/internal/infrastructure/search"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/logging"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/textsplit"
	"ContentPipeline/internal/usecase"
)

// Application wires configs to use cases and owns long-lived resources.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	ledger   *storage.RunLedger
	logger   *slog.Logger
}

// New builds a runnable application instance. An unknown LLM provider is a
// configuration error and fails construction, even in simulation mode.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := llm.DefaultRegistry()
	for _, stage := range domain.LLMStages {
		if _, err := registry.Resolve(cfg.LLM.ProviderFor(stage)); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
	}

	store := storage.NewFileStore(cfg.Artifacts.Root)

	research := usecase.NewResearchStage(cfg.Search.MaxResults, usecase.ResearchDeps{
		Search:   search.NewTavilyClient(cfg.Search),
		Fetcher:  parser.NewPageFetcher(nil, cfg.Scraper),
		Splitter: textsplit.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap),
		Store:    store,
		Logger:   baseLogger.With("component", "research"),
	})

	deps := usecase.PipelineDeps{
		Research: research,
		Store:    store,
		Fixtures: storage.NewFixtureDir(cfg.Artifacts.Fixtures),
		Logger:   baseLogger.With("component", "pipeline"),
		Simulate: cfg.Simulation.Enabled,
	}

	if !cfg.Simulation.Enabled {
		clients, err := buildClients(ctx, registry, cfg.LLM)
		if err != nil {
			return nil, err
		}
		deps.Analysis = usecase.NewAnalysisStage(cfg.Analysis.MaxChunks, clients[domain.StageAnalysis], store,
			baseLogger.With("component", "analysis"))
		deps.Script = usecase.NewScriptwritingStage(clients[domain.StageScriptwriting], store,
			baseLogger.With("component", "scriptwriting"))
		deps.Article = usecase.NewArticleWritingStage(clients[domain.StageArticleWriting], store,
			baseLogger.With("component", "article_writing"))
		deps.Visual = usecase.NewVisualAssetStage(clients[domain.StageVisualAssets], store,
			baseLogger.With("component", "visual_assets"))
	}

	application := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Ledger.Enabled {
		ledger, err := storage.OpenRunLedger(cfg.LedgerDSN())
		if err != nil {
			return nil, fmt.Errorf("open run ledger: %w", err)
		}
		application.ledger = ledger
		deps.Recorder = ledger
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

// buildClients creates one chat client per LLM stage, sharing a client
// between stages that use the same provider.
func buildClients(ctx context.Context, registry *llm.Registry, cfg config.LLMConfig) (map[string]ports.ChatClient, error) {
	byProvider := map[string]ports.ChatClient{}
	clients := make(map[string]ports.ChatClient, len(domain.LLMStages))
	for _, stage := range domain.LLMStages {
		provider := cfg.ProviderFor(stage)
		if client, ok := byProvider[provider]; ok {
			clients[stage] = client
			continue
		}
		client, err := registry.NewClient(ctx, cfg, stage)
		if err != nil {
			return nil, err
		}
		byProvider[provider] = client
		clients[stage] = client
	}
	return clients, nil
}

// Run performs a single pipeline execution for topic.
func (a *Application) Run(ctx context.Context, topic string) (domain.PipelineResult, error) {
	return a.pipeline.Run(ctx, topic)
}

// Ledger reports whether runs are being recorded.
func (a *Application) Ledger() bool { return a.ledger != nil }

// History lists recent runs from the ledger; nil when the ledger is disabled.
func (a *Application) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if a.ledger == nil {
		return nil, nil
	}
	return a.ledger.RecentRuns(ctx, limit)
}

// Close releases the run ledger.
func (a *Application) Close() error {
	if a.ledger == nil {
		return nil
	}
	return a.ledger.Close()
}
