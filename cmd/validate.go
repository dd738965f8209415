package cmd

import (
	"fmt"

	"github.com/kayz/promptsmith/internal/output"
	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/spf13/cobra"
)

var (
	validateFormat string
	validateSaved  string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Report errors, warnings and suggestions for a prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(validateFormat)
		if err != nil {
			return err
		}
		b, err := loadPrompt(argOrEmpty(args), validateSaved)
		if err != nil {
			return err
		}

		report := b.Validate(promptbuild.ValidateOptionsFrom(currentConfig().Validation))

		var rendered string
		if format == output.FormatTable {
			rendered = output.ReportTable(report)
		} else if rendered, err = output.Marshal(format, report); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)

		if report.HasErrors() {
			return fmt.Errorf("validation failed with %d errors", len(report.Errors))
		}
		if validateStrict && len(report.Warnings) > 0 {
			return fmt.Errorf("validation failed with %d warnings (--strict)", len(report.Warnings))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "table", "Output format: table, json, yaml")
	validateCmd.Flags().StringVar(&validateSaved, "saved", "", "Validate a stored prompt instead of a file")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as failures")
	rootCmd.AddCommand(validateCmd)
}
