package cmd

import (
	"fmt"
	"strings"

	"github.com/kayz/promptsmith/internal/logger"
	"github.com/kayz/promptsmith/internal/output"
	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/spf13/cobra"
)

var (
	renderEncoding   string
	renderOutputPath string
	renderHTML       bool
	renderRecord     bool
	renderSaved      string
)

var renderCmd = &cobra.Command{
	Use:   "render [FILE]",
	Short: "Render a prompt file as a system prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadPrompt(argOrEmpty(args), renderSaved)
		if err != nil {
			return err
		}

		var enc promptbuild.Encoding
		if renderEncoding != "" {
			parsed, ok := promptbuild.ParseEncoding(renderEncoding)
			if !ok {
				return fmt.Errorf("unsupported encoding %q: use %s", renderEncoding, encodingNames())
			}
			enc = parsed
		}

		text := b.RenderAs(enc)
		if text == "" {
			logger.Warn("prompt renders empty; nothing is configured")
		}

		out := text
		if renderHTML {
			// HTML needs the Markdown form regardless of the chosen encoding
			title := renderSaved
			if title == "" {
				title = argOrEmpty(args)
			}
			out, err = output.HTMLPreview(title, b.RenderAs(promptbuild.EncodingStructured))
			if err != nil {
				return err
			}
		}

		if err := writeOutput(renderOutputPath, out); err != nil {
			return err
		}

		if renderRecord {
			if err := recordRender(renderSaved, b, enc, text); err != nil {
				logger.Warn("record render failed: %v", err)
			}
		}
		return nil
	},
}

// recordRender stores the render in the history database and appends it to
// the audit trail when auditing is enabled.
func recordRender(name string, b *promptbuild.Builder, enc promptbuild.Encoding, text string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.RecordRender(name, b, enc, text)
	if err != nil {
		return err
	}
	logger.Info("recorded render %s (%s, %d chars)", rec.ID, rec.Encoding, rec.Chars)

	return promptbuild.NewAuditor(currentConfig().Audit).Record(b, enc, text)
}

func encodingNames() string {
	names := make([]string, len(promptbuild.Encodings))
	for i, enc := range promptbuild.Encodings {
		names[i] = string(enc)
	}
	return strings.Join(names, ", ")
}

func init() {
	renderCmd.Flags().StringVar(&renderEncoding, "encoding", "", "Encoding: structured, dense, compacted (default: the prompt's own)")
	renderCmd.Flags().StringVar(&renderOutputPath, "output", "", "Write output to file (default: stdout)")
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Write an HTML preview of the structured render")
	renderCmd.Flags().BoolVar(&renderRecord, "record", false, "Record the render in history and the audit trail")
	renderCmd.Flags().StringVar(&renderSaved, "saved", "", "Render a stored prompt instead of a file")
	rootCmd.AddCommand(renderCmd)
}
