package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ContentPipeline/internal/app"
	"ContentPipeline/internal/config"
	"ContentPipeline/internal/logging"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs from the run ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 10, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	// listing runs needs no LLM clients
	cfg.Simulation.Enabled = true

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}
	defer application.Close()

	if !application.Ledger() {
		return errors.New("run ledger is disabled (ledger.enabled is false)")
	}

	runs, err := application.History(ctx, historyFlags.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	for _, r := range runs {
		mode := "live"
		if r.Simulated {
			mode = "simulated"
		}
		fmt.Fprintf(out, "%s  %s  %-9s %-9s tokens=%-6d %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.ID, r.Status, mode, r.Total().TotalTokens, r.Topic.ID)
		if r.Error != "" {
			fmt.Fprintf(out, "    error: %s\n", r.Error)
		}
	}
	return nil
}
