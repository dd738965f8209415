package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kayz/promptsmith/internal/agentexport"
	"github.com/kayz/promptsmith/internal/logger"
)

var serveSaved string

var serveCmd = &cobra.Command{
	Use:   "serve [FILE]",
	Short: "Expose a prompt's tool declarations as an MCP server on stdio",
	Long: `Expose a prompt's tool declarations as an MCP server on stdio.

Prompt files carry no tool implementations, so calls return an error
result. The server lets MCP clients list and inspect the declared tools.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadPrompt(argOrEmpty(args), serveSaved)
		if err != nil {
			return err
		}
		s := agentexport.NewMCPServer(b, "promptsmith", Version)
		logger.Info("serving %d tools over stdio", len(b.ExportRuntime().Order))
		return server.ServeStdio(s)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveSaved, "saved", "", "Serve a stored prompt instead of a file")
	rootCmd.AddCommand(serveCmd)
}
