package cmd

import (
	"fmt"

	"github.com/kayz/promptsmith/internal/logger"
	"github.com/spf13/cobra"
)

var (
	mergeFormat     string
	mergeOutputPath string
)

var mergeCmd = &cobra.Command{
	Use:   "merge BASE FILE...",
	Short: "Merge prompt files into the first one",
	Long: `Merge prompt files left to right into BASE.

Lists are concatenated with BASE first, capabilities and forbidden topics
are deduplicated, and BASE keeps its identity, tone, output format, error
handling and encoding. A tool name declared in two files is an error.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadPromptFile(args[0])
		if err != nil {
			return err
		}
		for _, path := range args[1:] {
			src, err := loadPromptFile(path)
			if err != nil {
				return err
			}
			if _, err := base.Merge(src); err != nil {
				return fmt.Errorf("merge %s: %w", path, err)
			}
			logger.Debug("merged %s into %s", path, args[0])
		}

		out, err := exportPrompt(base, mergeFormat)
		if err != nil {
			return err
		}
		return writeOutput(mergeOutputPath, out)
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFormat, "format", "yaml", "Output format: json, yaml, openai, anthropic, mcp")
	mergeCmd.Flags().StringVar(&mergeOutputPath, "output", "", "Write output to file (default: stdout)")
	rootCmd.AddCommand(mergeCmd)
}
