package cmd

import (
	"fmt"

	"github.com/kayz/promptsmith/internal/logger"
	"github.com/kayz/promptsmith/internal/output"
	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPrune bool
)

var saveCmd = &cobra.Command{
	Use:   "save NAME FILE",
	Short: "Store a prompt file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadPromptFile(args[1])
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.SaveConfig(args[0], b)
		if err != nil {
			return err
		}
		logger.Info("saved %s (%s)", saved.Name, saved.Digest)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", saved.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		configs, err := store.ListConfigs()
		if err != nil {
			return err
		}
		if len(configs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored prompts.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.ConfigsTable(configs))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.DeleteConfig(args[0])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [NAME]",
	Short: "Show recorded renders, optionally for one stored prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyPrune {
			if err := pruneAuditFiles(); err != nil {
				return err
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.ListRenders(argOrEmpty(args), historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded renders.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.RendersTable(records))
		return nil
	},
}

// pruneAuditFiles drops audit files past the configured retention.
func pruneAuditFiles() error {
	audit := currentConfig().Audit
	if err := promptbuild.NewAuditor(audit).CleanupOldAuditFiles(); err != nil {
		return fmt.Errorf("prune audit files: %w", err)
	}
	logger.Debug("pruned audit files older than %d days", audit.RetentionDays)
	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of renders to show")
	historyCmd.Flags().BoolVar(&historyPrune, "prune", false, "Remove audit files older than the retention window first")
	rootCmd.AddCommand(saveCmd, listCmd, deleteCmd, historyCmd)
}
