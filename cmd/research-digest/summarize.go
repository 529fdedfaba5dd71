// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a search result object",
	Long: `Summarize reads a search result object ({"papers": [...]}) and asks the
language model for short factual bullets per paper. At most 10 papers are
summarized. Malformed model output falls back to placeholder bullets and an
advisory error field.

Example:
  research-digest search "federated learning privacy" | research-digest summarize`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		bullets, _ := cmd.Flags().GetInt("bullets")
		format, _ := cmd.Flags().GetString("format")

		data, err := readInput(cmd.InOrStdin(), input)
		if err != nil {
			return err
		}

		summarizer, _, err := newSummarizer(cfg)
		if err != nil {
			return err
		}
		result := summarizer.Summarize(cmd.Context(), data,
			intFlag(cmd.Flags().Changed("bullets"), bullets, cfg.Summary.Bullets))
		return writeResult(cmd.OutOrStdout(), result, format)
	},
}

// readInput reads path, or stdin when path is "-" or empty.
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func init() {
	summarizeCmd.Flags().String("input", "-", "search result JSON file, or - for stdin")
	summarizeCmd.Flags().Int("bullets", 5, "maximum bullets per paper")
	summarizeCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(summarizeCmd)
}
