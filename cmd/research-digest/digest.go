// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/pipeline"
)

var digestCmd = &cobra.Command{
	Use:   "digest <query>",
	Short: "Search, summarize and render a readable answer",
	Long: `Digest runs the whole flow for one query: search arXiv, summarize the papers
found, and render a readable answer. With --json the full report (task, search
result, summary and answer) is printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("max-results")
		bullets, _ := cmd.Flags().GetInt("bullets")
		asJSON, _ := cmd.Flags().GetBool("json")

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		task := pipeline.Task{
			Query:      strings.Join(args, " "),
			MaxResults: intFlag(cmd.Flags().Changed("max-results"), n, cfg.Search.DefaultMaxResults),
			Bullets:    intFlag(cmd.Flags().Changed("bullets"), bullets, cfg.Summary.Bullets),
		}

		report, err := p.Run(cmd.Context(), task)
		if err != nil {
			return err
		}
		if asJSON {
			return writeResult(cmd.OutOrStdout(), report, "json")
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Answer)
		return nil
	},
}

func init() {
	digestCmd.Flags().Int("max-results", 3, "number of papers to find (1-25)")
	digestCmd.Flags().Int("bullets", 5, "maximum bullets per paper")
	digestCmd.Flags().Bool("json", false, "print the full report as JSON")

	rootCmd.AddCommand(digestCmd)
}
