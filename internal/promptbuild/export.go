package promptbuild

import (
	"github.com/kayz/promptsmith/internal/schema"
	"github.com/mark3labs/mcp-go/server"
)

// StructuredConfig is the serializable form of a builder's configuration.
type StructuredConfig struct {
	Identity          string             `json:"identity" yaml:"identity"`
	Context           string             `json:"context" yaml:"context"`
	Capabilities      []string           `json:"capabilities" yaml:"capabilities"`
	Tools             []ToolConfig       `json:"tools" yaml:"tools"`
	Constraints       []ConstraintConfig `json:"constraints" yaml:"constraints"`
	Examples          []ExampleConfig    `json:"examples" yaml:"examples"`
	ErrorHandling     string             `json:"errorHandling" yaml:"errorHandling"`
	GuardrailsEnabled bool               `json:"guardrailsEnabled" yaml:"guardrailsEnabled"`
	ForbiddenTopics   []string           `json:"forbiddenTopics" yaml:"forbiddenTopics"`
	Tone              string             `json:"tone" yaml:"tone"`
	OutputFormat      string             `json:"outputFormat" yaml:"outputFormat"`
	RenderEncoding    Encoding           `json:"renderEncoding" yaml:"renderEncoding"`
}

// ToolConfig is a tool with its parameters as a JSON schema document.
type ToolConfig struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type ConstraintConfig struct {
	Type ConstraintType `json:"type" yaml:"type"`
	Rule string         `json:"rule" yaml:"rule"`
}

// ExampleConfig holds either user/assistant or input/output text.
type ExampleConfig struct {
	User        string `json:"user,omitempty" yaml:"user,omitempty"`
	Assistant   string `json:"assistant,omitempty" yaml:"assistant,omitempty"`
	Input       string `json:"input,omitempty" yaml:"input,omitempty"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

func (e ExampleConfig) example() Example {
	if e.User != "" || e.Assistant != "" {
		return Conversation(e.User, e.Assistant).WithExplanation(e.Explanation)
	}
	return IO(e.Input, e.Output).WithExplanation(e.Explanation)
}

// ExportConfig returns the current configuration. It always reads the live
// model, never the render cache.
func (b *Builder) ExportConfig() StructuredConfig {
	m := &b.m
	cfg := StructuredConfig{
		Identity:          m.identity,
		Context:           m.context,
		Capabilities:      append([]string{}, m.capabilities...),
		Tools:             make([]ToolConfig, 0, len(m.tools)),
		Constraints:       make([]ConstraintConfig, 0, len(m.constraints)),
		Examples:          make([]ExampleConfig, 0, len(m.examples)),
		ErrorHandling:     m.errorHandling,
		GuardrailsEnabled: m.guardrails,
		ForbiddenTopics:   append([]string{}, m.forbiddenTopics...),
		Tone:              m.tone,
		OutputFormat:      m.outputFormat,
		RenderEncoding:    m.encoding,
	}
	for _, t := range m.tools {
		tc := ToolConfig{Name: t.Name, Description: t.Description}
		if t.Parameters != nil {
			tc.Parameters = schema.ToJSONSchema(t.Parameters)
		}
		cfg.Tools = append(cfg.Tools, tc)
	}
	for _, c := range m.constraints {
		cfg.Constraints = append(cfg.Constraints, ConstraintConfig{Type: c.Type, Rule: c.Rule})
	}
	for _, ex := range m.examples {
		ec := ExampleConfig{Explanation: ex.Explanation}
		if ex.Kind == ExampleIO {
			ec.Input, ec.Output = ex.Prompt, ex.Response
		} else {
			ec.User, ec.Assistant = ex.Prompt, ex.Response
		}
		cfg.Examples = append(cfg.Examples, ec)
	}
	return cfg
}

// FromConfig builds a new builder from an exported configuration. Entries
// that fail normalization are dropped the same way the builder methods
// drop them. Tool handlers cannot be serialized and are absent.
func FromConfig(cfg StructuredConfig) *Builder {
	b := New().
		WithIdentity(cfg.Identity).
		WithContext(cfg.Context).
		WithCapabilities(cfg.Capabilities...).
		WithErrorHandling(cfg.ErrorHandling).
		WithForbiddenTopics(cfg.ForbiddenTopics...).
		WithTone(cfg.Tone).
		WithOutputFormat(cfg.OutputFormat).
		WithGuardrailsIf(cfg.GuardrailsEnabled)

	for _, tc := range cfg.Tools {
		b.WithTool(Tool{
			Name:        tc.Name,
			Description: tc.Description,
			Parameters:  schema.FromJSONSchema(tc.Parameters),
		})
	}
	for _, c := range cfg.Constraints {
		if t, ok := ParseConstraintType(string(c.Type)); ok {
			b.WithConstraint(t, c.Rule)
		}
	}
	for _, ec := range cfg.Examples {
		b.WithExample(ec.example())
	}
	if enc, ok := ParseEncoding(string(cfg.RenderEncoding)); ok {
		b.WithEncoding(enc)
	}
	return b
}

// RuntimeTool is a tool descriptor handed to an agent runtime.
type RuntimeTool struct {
	Description string
	Parameters  *schema.Node
	Handler     server.ToolHandlerFunc
}

// RuntimeExport pairs the rendered prompt with the tools an agent runtime
// needs. Order lists the tool names in declaration order.
type RuntimeExport struct {
	Text  string
	Tools map[string]RuntimeTool
	Order []string
}

// ExportRuntime renders the prompt exactly as Render does and converts each
// tool into a runtime descriptor. When a name is declared twice the first
// declaration wins.
func (b *Builder) ExportRuntime() RuntimeExport {
	tools := b.m.uniqueTools()
	out := RuntimeExport{
		Text:  b.Render(),
		Tools: make(map[string]RuntimeTool, len(tools)),
		Order: make([]string, 0, len(tools)),
	}
	for _, t := range tools {
		out.Tools[t.Name] = RuntimeTool{
			Description: t.Description,
			Parameters:  t.Parameters,
			Handler:     t.Handler,
		}
		out.Order = append(out.Order, t.Name)
	}
	return out
}
