// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search arXiv for papers",
	Long: `Search queries arXiv for the most relevant papers matching a free-text query
and prints the result object {query, count, papers}. Failures are printed as
{error}; the command itself still succeeds so the object can be piped on.

The result count is clamped to 1..25.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("max-results")
		format, _ := cmd.Flags().GetString("format")

		src := search.NewArxivSource(cfg.Search, logger)
		result := src.Search(cmd.Context(), strings.Join(args, " "),
			intFlag(cmd.Flags().Changed("max-results"), n, cfg.Search.DefaultMaxResults))
		return writeResult(cmd.OutOrStdout(), result, format)
	},
}

func init() {
	searchCmd.Flags().Int("max-results", 3, "number of papers to return (1-25)")
	searchCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(searchCmd)
}
