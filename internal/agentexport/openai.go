// Package agentexport converts a builder's tools into the tool declarations
// of agent runtimes: OpenAI-compatible chat APIs, Anthropic messages and
// MCP servers.
package agentexport

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/kayz/promptsmith/internal/promptbuild"
	"github.com/kayz/promptsmith/internal/schema"
)

var apiToolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NameCodec maps declared tool names to names accepted by provider APIs and
// back. Names that clash after sanitizing get a numeric suffix.
type NameCodec struct {
	toAPI   map[string]string
	fromAPI map[string]string
}

// NewNameCodec builds a codec for names in declaration order.
func NewNameCodec(names []string) *NameCodec {
	c := &NameCodec{
		toAPI:   make(map[string]string, len(names)),
		fromAPI: make(map[string]string, len(names)),
	}
	used := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, done := c.toAPI[name]; done {
			continue
		}
		apiName := SanitizeToolName(name)
		base := apiName
		for i := 2; ; i++ {
			if _, exists := used[apiName]; !exists {
				break
			}
			apiName = fmt.Sprintf("%s_%d", base, i)
		}
		c.toAPI[name] = apiName
		c.fromAPI[apiName] = name
		used[apiName] = struct{}{}
	}
	return c
}

// SanitizeToolName replaces characters provider APIs reject with '_'.
func SanitizeToolName(name string) string {
	name = strings.TrimSpace(name)
	if apiToolNamePattern.MatchString(name) {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), "_-")
	if s == "" {
		return "tool"
	}
	return s
}

// Encode returns the API name for a declared tool name.
func (c *NameCodec) Encode(name string) string {
	if c == nil {
		return name
	}
	if v, ok := c.toAPI[name]; ok {
		return v
	}
	return SanitizeToolName(name)
}

// Decode returns the declared name for an API name, or name itself when it
// is unknown.
func (c *NameCodec) Decode(name string) string {
	if c == nil {
		return name
	}
	if v, ok := c.fromAPI[name]; ok {
		return v
	}
	return name
}

// Renamed maps each API name that differs from its declared name back to
// the declared name. Tools whose names survive sanitizing are left out.
func (c *NameCodec) Renamed() map[string]string {
	out := make(map[string]string)
	if c == nil {
		return out
	}
	for apiName, name := range c.fromAPI {
		if apiName != name {
			out[apiName] = name
		}
	}
	return out
}

// parameters returns the JSON schema for a tool, defaulting to an empty
// object schema.
func parameters(t promptbuild.RuntimeTool) map[string]any {
	if t.Parameters == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if t.Parameters.Kind != schema.KindObject {
		// function calling needs an object root
		return schema.ToJSONSchema(schema.Object(schema.Required("input", t.Parameters)))
	}
	return schema.ToJSONSchema(t.Parameters)
}

// ToOpenAITools returns function tool declarations for the builder's tools
// and the codec needed to map tool call names back.
func ToOpenAITools(b *promptbuild.Builder) ([]openai.Tool, *NameCodec) {
	rt := b.ExportRuntime()
	codec := NewNameCodec(rt.Order)
	converted := make([]openai.Tool, 0, len(rt.Order))
	for _, name := range rt.Order {
		tool := rt.Tools[name]
		converted = append(converted, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        codec.Encode(name),
				Description: tool.Description,
				Parameters:  parameters(tool),
			},
		})
	}
	return converted, codec
}

// OpenAIRequest returns a chat completion request carrying the rendered
// prompt as the system message and the builder's tools.
func OpenAIRequest(b *promptbuild.Builder, model string) (openai.ChatCompletionRequest, *NameCodec) {
	tools, codec := ToOpenAITools(b)
	req := openai.ChatCompletionRequest{Model: model}
	if text := b.Render(); text != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: text,
		})
	}
	if len(tools) > 0 {
		req.Tools = tools
	}
	return req, codec
}
