package cmd

import (
	"fmt"
	"strings"

	"github.com/kayz/promptsmith/internal/output"
	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/spf13/cobra"
)

var (
	inspectSaved  string
	inspectFormat string
)

type inspection struct {
	ID       string                 `json:"id" yaml:"id"`
	Summary  promptbuild.Summary    `json:"summary" yaml:"summary"`
	Sections []string               `json:"sections" yaml:"sections"`
	Cache    promptbuild.CacheStats `json:"cache" yaml:"cache"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [FILE]",
	Short: "Show the sections, counts and render cache of a prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(inspectFormat)
		if err != nil {
			return err
		}
		b, err := loadPrompt(argOrEmpty(args), inspectSaved)
		if err != nil {
			return err
		}
		for _, enc := range promptbuild.Encodings {
			b.RenderAs(enc)
		}

		if format != output.FormatTable {
			rendered, err := output.Marshal(format, inspection{
				ID:       b.ID(),
				Summary:  b.Summary(),
				Sections: b.Sections(),
				Cache:    b.CacheStats(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), output.SummaryTable(b.Summary(), b.CacheStats()))
		if sections := b.Sections(); len(sections) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Sections: %s\n", strings.Join(sections, " > "))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSaved, "saved", "", "Inspect a stored prompt instead of a file")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "table", "Output format: table, json, yaml")
	rootCmd.AddCommand(inspectCmd)
}
