package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ContentPipeline/internal/domain"
)

func TestRunLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	ledger, err := OpenRunLedger(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("OpenRunLedger error: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	base := time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC)

	older := domain.RunRecord{
		ID:         "run-1",
		Topic:      domain.Topic{Name: "The Future of AI!", ID: "the-future-of-ai"},
		Simulated:  true,
		Status:     domain.RunSucceeded,
		StartedAt:  base,
		FinishedAt: base.Add(time.Second),
		Usage: map[string]domain.TokenUsage{
			domain.StageAnalysis:      {},
			domain.StageScriptwriting: {},
		},
	}
	newer := domain.RunRecord{
		ID:         "run-2",
		Topic:      domain.Topic{Name: "Go generics", ID: "go-generics"},
		Status:     domain.RunFailed,
		Error:      "scriptwriting: boom",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Minute),
		Usage: map[string]domain.TokenUsage{
			domain.StageAnalysis: {PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		},
	}

	for _, rec := range []domain.RunRecord{older, newer} {
		if err := ledger.RecordRun(ctx, rec); err != nil {
			t.Fatalf("RecordRun(%s) error: %v", rec.ID, err)
		}
	}

	runs, err := ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns error: %v", err)
	}

	if diff := cmp.Diff([]domain.RunRecord{newer, older}, runs); diff != "" {
		t.Fatalf("RecentRuns mismatch (-want +got):\n%s", diff)
	}

	limited, err := ledger.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns(1) error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("expected newest run only, got %+v", limited)
	}
}

func TestRunLedgerRejectsDuplicateRun(t *testing.T) {
	t.Parallel()

	ledger, err := OpenRunLedger(":memory:")
	if err != nil {
		t.Fatalf("OpenRunLedger error: %v", err)
	}
	defer ledger.Close()

	rec := domain.RunRecord{ID: "dup", Topic: domain.Topic{Name: "x", ID: "x"}, Status: domain.RunSucceeded}
	if err := ledger.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("first RecordRun error: %v", err)
	}
	if err := ledger.RecordRun(context.Background(), rec); err == nil {
		t.Fatalf("expected primary key violation on duplicate run")
	}
}

func TestNilRunLedgerIsNoop(t *testing.T) {
	t.Parallel()

	var ledger *RunLedger
	if err := ledger.RecordRun(context.Background(), domain.RunRecord{}); err != nil {
		t.Fatalf("nil ledger RecordRun: %v", err)
	}
	if runs, err := ledger.RecentRuns(context.Background(), 5); err != nil || runs != nil {
		t.Fatalf("nil ledger RecentRuns: %v %v", runs, err)
	}
}

func TestRunLedgerOrdersRunsWithinOneSecond(t *testing.T) {
	t.Parallel()

	ledger, err := OpenRunLedger(":memory:")
	if err != nil {
		t.Fatalf("OpenRunLedger error: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	base := time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC)
	for _, rec := range []domain.RunRecord{
		{ID: "whole-second", Topic: domain.Topic{Name: "a", ID: "a"}, Status: domain.RunSucceeded, StartedAt: base},
		{ID: "half-second", Topic: domain.Topic{Name: "b", ID: "b"}, Status: domain.RunSucceeded, StartedAt: base.Add(500 * time.Millisecond)},
		{ID: "next-second", Topic: domain.Topic{Name: "c", ID: "c"}, Status: domain.RunSucceeded, StartedAt: base.Add(time.Second)},
	} {
		if err := ledger.RecordRun(ctx, rec); err != nil {
			t.Fatalf("RecordRun(%s) error: %v", rec.ID, err)
		}
	}

	runs, err := ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns error: %v", err)
	}

	got := make([]string, 0, len(runs))
	for _, r := range runs {
		got = append(got, r.ID)
	}
	if diff := cmp.Diff([]string{"next-second", "half-second", "whole-second"}, got); diff != "" {
		t.Fatalf("runs not newest first (-want +got):\n%s", diff)
	}
	if !runs[1].StartedAt.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("start time not preserved: %v", runs[1].StartedAt)
	}
}
