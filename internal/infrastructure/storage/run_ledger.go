package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	topic       TEXT NOT NULL,
	topic_id    TEXT NOT NULL,
	simulated   INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
CREATE TABLE IF NOT EXISTS stage_usage (
	run_id            TEXT NOT NULL REFERENCES runs (id),
	stage             TEXT NOT NULL,
	prompt_tokens     INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens      INTEGER NOT NULL,
	PRIMARY KEY (run_id, stage)
);`

// RunLedger persists run summaries and per-stage token usage in SQLite.
type RunLedger struct {
	db *sql.DB
}

var (
	_ ports.RunRecorder = (*RunLedger)(nil)
	_ ports.RunHistory  = (*RunLedger)(nil)
)

// OpenRunLedger opens or creates the SQLite ledger at dsn and applies the schema.
func OpenRunLedger(dsn string) (*RunLedger, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return &RunLedger{db: db}, nil
}

// Close releases the database handle.
func (l *RunLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// RecordRun inserts the run row and its stage usage in one transaction.
func (l *RunLedger) RecordRun(ctx context.Context, run domain.RunRecord) error {
	if l == nil || l.db == nil {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	query, args, err := sq.Insert("runs").
		Columns("id", "topic", "topic_id", "simulated", "status", "error", "started_at", "finished_at").
		Values(run.ID, run.Topic.Name, run.Topic.ID, run.Simulated, string(run.Status), run.Error,
			formatTime(run.StartedAt), formatTime(run.FinishedAt)).
		ToSql()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Usage) > 0 {
		insert := sq.Insert("stage_usage").
			Columns("run_id", "stage", "prompt_tokens", "completion_tokens", "total_tokens")
		for _, stage := range sortedStages(run.Usage) {
			u := run.Usage[stage]
			insert = insert.Values(run.ID, stage, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build usage insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their usage.
func (l *RunLedger) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query, args, err := sq.Select("id", "topic", "topic_id", "simulated", "status", "error", "started_at", "finished_at").
		From("runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs query: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var (
		runs  []domain.RunRecord
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			rec               domain.RunRecord
			status            string
			started, finished string
		)
		if err := rows.Scan(&rec.ID, &rec.Topic.Name, &rec.Topic.ID, &rec.Simulated, &status, &rec.Error, &started, &finished); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Status = domain.RunStatus(status)
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		rec.Usage = map[string]domain.TokenUsage{}
		index[rec.ID] = len(runs)
		runs = append(runs, rec)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	if len(runs) == 0 {
		return runs, nil
	}

	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}

	query, args, err = sq.Select("run_id", "stage", "prompt_tokens", "completion_tokens", "total_tokens").
		From("stage_usage").
		Where(sq.Eq{"run_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage query: %w", err)
	}

	usageRows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer usageRows.Close()

	for usageRows.Next() {
		var (
			runID, stage string
			u            domain.TokenUsage
		)
		if err := usageRows.Scan(&runID, &stage, &u.PromptTokens, &u.CompletionTokens, &u.TotalTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if i, ok := index[runID]; ok {
			runs[i].Usage[stage] = u
		}
	}
	if err := usageRows.Err(); err != nil {
		return nil, fmt.Errorf("usage iteration: %w", err)
	}

	return runs, nil
}

// ledgerTimeLayout keeps every fraction digit so stored timestamps sort
// lexically in time order.
const ledgerTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(ledgerTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sortedStages(usage map[string]domain.TokenUsage) []string {
	stages := make([]string, 0, len(usage))
	for _, stage := range domain.LLMStages {
		if _, ok := usage[stage]; ok {
			stages = append(stages, stage)
		}
	}
	for stage := range usage {
		if !slices.Contains(stages, stage) {
			stages = append(stages, stage)
		}
	}
	return stages
}
