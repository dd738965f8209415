package agentexport

import (
	"github.com/liushuangls/go-anthropic/v2"

	"github.com/kayz/promptsmith/internal/promptbuild"
)

// ToAnthropicTools returns tool definitions for the Anthropic messages API.
func ToAnthropicTools(b *promptbuild.Builder) ([]anthropic.ToolDefinition, *NameCodec) {
	rt := b.ExportRuntime()
	codec := NewNameCodec(rt.Order)
	out := make([]anthropic.ToolDefinition, 0, len(rt.Order))
	for _, name := range rt.Order {
		tool := rt.Tools[name]
		out = append(out, anthropic.ToolDefinition{
			Name:        codec.Encode(name),
			Description: tool.Description,
			InputSchema: parameters(tool),
		})
	}
	return out, codec
}

// AnthropicRequest returns a messages request with the rendered prompt as
// the system prompt.
func AnthropicRequest(b *promptbuild.Builder, model anthropic.Model, maxTokens int) (anthropic.MessagesRequest, *NameCodec) {
	tools, codec := ToAnthropicTools(b)
	req := anthropic.MessagesRequest{
		Model:     model,
		System:    b.Render(),
		MaxTokens: maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = tools
	}
	return req, codec
}
