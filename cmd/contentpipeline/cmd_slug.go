package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ContentPipeline/internal/topic"
)

var slugCmd = &cobra.Command{
	Use:   "slug <topic>",
	Short: "Print the artifact directory name for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), topic.ID(strings.Join(args, " ")))
		return nil
	},
}
