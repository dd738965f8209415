package agentexport

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/kayz/promptsmith/internal/schema"
)

func sampleBuilder() *promptbuild.Builder {
	return promptbuild.New().
		WithIdentity("You are a file assistant.").
		WithTool(promptbuild.Tool{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: schema.Object(
				schema.Required("path", schema.String("File path")),
				schema.Optional("limit", schema.Number()),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("contents"), nil
			},
		}).
		WithTool(promptbuild.Tool{Name: "web.search", Description: "Search"}).
		WithTool(promptbuild.Tool{Name: "web:search", Description: "Search again"})
}

func TestSanitizeToolName(t *testing.T) {
	assert.Equal(t, "read_file", SanitizeToolName("read_file"))
	assert.Equal(t, "web_search", SanitizeToolName(" web.search "))
	assert.Equal(t, "tool", SanitizeToolName("..."))
}

func TestNameCodecDisambiguates(t *testing.T) {
	codec := NewNameCodec([]string{"web.search", "web:search", "web.search"})
	assert.Equal(t, "web_search", codec.Encode("web.search"))
	assert.Equal(t, "web_search_2", codec.Encode("web:search"))
	assert.Equal(t, "web:search", codec.Decode("web_search_2"))
	assert.Equal(t, "unknown", codec.Decode("unknown"))

	var nilCodec *NameCodec
	assert.Equal(t, "x.y", nilCodec.Encode("x.y"))
	assert.Empty(t, nilCodec.Renamed())
}

func TestNameCodecRenamed(t *testing.T) {
	_, codec := OpenAIRequest(sampleBuilder(), "gpt-4o")
	assert.Equal(t, map[string]string{
		"web_search":   "web.search",
		"web_search_2": "web:search",
	}, codec.Renamed())
}

func TestToOpenAITools(t *testing.T) {
	tools, codec := ToOpenAITools(sampleBuilder())
	require.Len(t, tools, 3)

	first := tools[0]
	assert.Equal(t, openai.ToolTypeFunction, first.Type)
	require.NotNil(t, first.Function)
	assert.Equal(t, "read_file", first.Function.Name)

	params, ok := first.Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []string{"path"}, params["required"])
	assert.Contains(t, params["properties"], "limit")

	assert.Equal(t, "web_search", tools[1].Function.Name)
	assert.Equal(t, "web_search_2", tools[2].Function.Name)
	assert.Equal(t, "web.search", codec.Decode(tools[1].Function.Name))

	empty, ok := tools[1].Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, empty)
}

func TestNonObjectParametersAreWrapped(t *testing.T) {
	b := promptbuild.New().WithTool(promptbuild.Tool{Name: "echo", Parameters: schema.String("text")})
	tools, _ := ToOpenAITools(b)
	require.Len(t, tools, 1)
	params := tools[0].Function.Parameters.(map[string]any)
	assert.Equal(t, []string{"input"}, params["required"])
}

func TestOpenAIRequest(t *testing.T) {
	b := sampleBuilder()
	req, _ := OpenAIRequest(b, "gpt-4o")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, b.Render(), req.Messages[0].Content)
	assert.Len(t, req.Tools, 3)

	emptyReq, _ := OpenAIRequest(promptbuild.New(), "gpt-4o")
	assert.Empty(t, emptyReq.Messages)
	assert.Nil(t, emptyReq.Tools)
}

func TestToAnthropicTools(t *testing.T) {
	tools, _ := ToAnthropicTools(sampleBuilder())
	require.Len(t, tools, 3)
	assert.Equal(t, "read_file", tools[0].Name)
	assert.Equal(t, "Read a file", tools[0].Description)
	schemaDoc, ok := tools[0].InputSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schemaDoc["type"])

	req, _ := AnthropicRequest(sampleBuilder(), "claude-test", 1024)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Contains(t, req.System, "# Identity")
	assert.Len(t, req.Tools, 3)
}

func TestToMCPTools(t *testing.T) {
	tools := ToMCPTools(sampleBuilder())
	require.Len(t, tools, 3)

	read := tools[0]
	assert.Equal(t, "read_file", read.Tool.Name)
	assert.Equal(t, "object", read.Tool.InputSchema.Type)
	assert.Equal(t, []string{"path"}, read.Tool.InputSchema.Required)
	assert.Contains(t, read.Tool.InputSchema.Properties, "path")

	res, err := read.Handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	// declared names are kept; MCP does not restrict them
	assert.Equal(t, "web.search", tools[1].Tool.Name)
	res, err = tools[1].Handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(sampleBuilder(), "promptsmith", "test")
	require.NotNil(t, s)
}
