package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"ContentPipeline/internal/app"
	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/logging"
)

const defaultTopic = "The future of AI"

var runFlags struct {
	topic    string
	simulate bool
	render   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline for a topic",
	RunE:  runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.topic, "topic", defaultTopic, "Topic to research and write about")
	f.BoolVar(&runFlags.simulate, "simulate", false, "Read LLM stage outputs from fixtures instead of calling a provider")
	f.BoolVar(&runFlags.render, "render", false, "Pretty-print the script and article in the terminal")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if runFlags.simulate {
		cfg.Simulation.Enabled = true
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Run(ctx, runFlags.topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, cfg.Artifacts.Root, result)
	if runFlags.render {
		return renderDrafts(out, result)
	}
	return nil
}

func printSummary(out io.Writer, root string, result domain.PipelineResult) {
	fmt.Fprintf(out, "Run:       %s\n", result.RunID)
	fmt.Fprintf(out, "Topic:     %s (%s)\n", result.Topic.Name, result.Topic.ID)
	fmt.Fprintf(out, "Sources:   %d\n", len(result.Sources))
	fmt.Fprintf(out, "Shot list: %s\n", result.VisualOutcome)
	fmt.Fprintf(out, "Artifacts: %s/%s\n", root, result.Topic.ID)

	stages := make([]string, 0, len(result.Usage))
	for stage := range result.Usage {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	var total domain.TokenUsage
	fmt.Fprintf(out, "Token usage:\n")
	for _, stage := range stages {
		u := result.Usage[stage]
		total = total.Add(u)
		fmt.Fprintf(out, "  %-16s prompt=%d completion=%d total=%d\n", stage, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}
	fmt.Fprintf(out, "  %-16s prompt=%d completion=%d total=%d\n", "all", total.PromptTokens, total.CompletionTokens, total.TotalTokens)
}

func renderDrafts(out io.Writer, result domain.PipelineResult) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	for _, doc := range []string{result.Script, result.Article} {
		rendered, err := renderer.Render(doc)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprint(out, rendered)
	}
	return nil
}
