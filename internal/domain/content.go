package domain

import "time"

// Stage names used as keys for usage accounting and run records.
const (
	StageResearch       = "research"
	StageAnalysis       = "analysis"
	StageScriptwriting  = "scriptwriting"
	StageArticleWriting = "article_writing"
	StageVisualAssets   = "visual_assets"
)

// LLMStages lists every stage backed by a language model, in pipeline order.
var LLMStages = []string{StageAnalysis, StageScriptwriting, StageArticleWriting, StageVisualAssets}

// Topic is the human-readable subject of a run plus its derived directory key.
type Topic struct {
	Name string
	ID   string
}

// Source records one search result and a preview of what was scraped from it.
type Source struct {
	URL            string `json:"url"`
	ContentPreview string `json:"content_preview"`
}

// SearchResult is a single ranked hit from the search provider.
type SearchResult struct {
	URL   string
	Title string
	Score float64
}

// Outcome tags whether a result carries real content or a fallback.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
)

// StageResult is the uniform shape returned by every LLM-backed stage.
type StageResult struct {
	Stage     string
	Content   string
	Usage     TokenUsage
	Outcome   Outcome
	Simulated bool
}

// ChunkSummary is the analysis sub-step result for one research chunk.
type ChunkSummary struct {
	Index   int
	Text    string
	Outcome Outcome
	Err     error
}

// ResearchResult is what the research stage hands to analysis.
type ResearchResult struct {
	Sources []Source
	Chunks  []string
}

// PipelineResult aggregates one orchestration run.
type PipelineResult struct {
	RunID         string
	Topic         Topic
	Sources       []Source
	Narrative     string
	Script        string
	Article       string
	VisualAssets  string
	VisualOutcome Outcome
	Usage         map[string]TokenUsage
	Stages        map[string]StageResult
}

// RunStatus enumerates ledger states of a run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is persisted to the run ledger once per orchestration run.
type RunRecord struct {
	ID         string
	Topic      Topic
	Simulated  bool
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Usage      map[string]TokenUsage
}

// Total sums the usage of every stage in the record.
func (r RunRecord) Total() TokenUsage {
	var total TokenUsage
	for _, u := range r.Usage {
		total = total.Add(u)
	}
	return total
}
