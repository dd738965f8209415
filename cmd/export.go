package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kayz/promptsmith/internal/agentexport"
	"github.com/kayz/promptsmith/internal/logger"
	"github.com/kayz/promptsmith/internal/promptbuild"
)

var (
	exportFormat     string
	exportOutputPath string
	exportSaved      string
	exportModel      string
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export a prompt as config or as agent runtime tool descriptors",
	Long: `Export a prompt.

Formats:
  json, yaml   the structured configuration, loadable again as a prompt file
  openai       a chat completion request with system message and tools
  anthropic    a messages request with system prompt and tools
  mcp          the MCP tool list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadPrompt(argOrEmpty(args), exportSaved)
		if err != nil {
			return err
		}
		out, err := exportPrompt(b, exportFormat)
		if err != nil {
			return err
		}
		return writeOutput(exportOutputPath, out)
	},
}

func exportPrompt(b *promptbuild.Builder, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return marshalJSON(b.ExportConfig())
	case "yaml", "yml":
		data, err := yaml.Marshal(b.ExportConfig())
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case "openai":
		req, codec := agentexport.OpenAIRequest(b, exportModel)
		logRenamedTools(codec)
		return marshalJSON(req)
	case "anthropic":
		req, codec := agentexport.AnthropicRequest(b, anthropicModel(exportModel), 4096)
		logRenamedTools(codec)
		return marshalJSON(req)
	case "mcp":
		serverTools := agentexport.ToMCPTools(b)
		tools := make([]mcp.Tool, len(serverTools))
		for i, t := range serverTools {
			tools[i] = t.Tool
		}
		return marshalJSON(map[string]any{"tools": tools})
	default:
		return "", fmt.Errorf("unsupported export format %q: use json, yaml, openai, anthropic, mcp", format)
	}
}

// renamedTools lists "api <- declared" pairs for tools whose names had to
// change to satisfy the provider, sorted by API name.
func renamedTools(codec *agentexport.NameCodec) []string {
	renamed := codec.Renamed()
	out := make([]string, 0, len(renamed))
	for apiName, name := range renamed {
		out = append(out, fmt.Sprintf("%s <- %s", apiName, name))
	}
	sort.Strings(out)
	return out
}

// logRenamedTools reports renames so tool calls can be mapped back to the
// declared names.
func logRenamedTools(codec *agentexport.NameCodec) {
	for _, pair := range renamedTools(codec) {
		logger.Warn("tool renamed for export: %s", pair)
	}
}

func anthropicModel(name string) anthropic.Model {
	if name == "" {
		name = "claude-3-5-sonnet-latest"
	}
	return anthropic.Model(name)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json, yaml, openai, anthropic, mcp")
	exportCmd.Flags().StringVar(&exportOutputPath, "output", "", "Write output to file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSaved, "saved", "", "Export a stored prompt instead of a file")
	exportCmd.Flags().StringVar(&exportModel, "model", "", "Model name placed in openai/anthropic requests")
	rootCmd.AddCommand(exportCmd)
}
