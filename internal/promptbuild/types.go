package promptbuild

import (
	"strings"

	"github.com/kayz/promptsmith/internal/schema"
	"github.com/mark3labs/mcp-go/server"
)

// Encoding selects the textual rendering of a configuration.
type Encoding string

const (
	// EncodingStructured renders Markdown headings and lists.
	EncodingStructured Encoding = "structured"
	// EncodingDense renders one colon-delimited item per line.
	EncodingDense Encoding = "dense"
	// EncodingCompacted renders the structured form with blank-line runs
	// collapsed and trailing whitespace removed.
	EncodingCompacted Encoding = "compacted"
)

// Encodings lists every encoding in canonical order.
var Encodings = []Encoding{EncodingStructured, EncodingDense, EncodingCompacted}

// Valid reports whether e names a known encoding.
func (e Encoding) Valid() bool {
	switch e {
	case EncodingStructured, EncodingDense, EncodingCompacted:
		return true
	}
	return false
}

// ParseEncoding resolves an encoding name. The second result is false for
// unknown names, in which case the structured encoding is returned.
func ParseEncoding(s string) (Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "markdown", "md":
		return EncodingStructured, true
	case "dense":
		return EncodingDense, true
	case "compacted", "compact":
		return EncodingCompacted, true
	default:
		return EncodingStructured, false
	}
}

// ConstraintType is one of the four behavioral guideline buckets.
type ConstraintType string

const (
	Must      ConstraintType = "must"
	MustNot   ConstraintType = "must_not"
	Should    ConstraintType = "should"
	ShouldNot ConstraintType = "should_not"
)

// ConstraintTypes lists the buckets in render order.
var ConstraintTypes = []ConstraintType{Must, MustNot, Should, ShouldNot}

func (t ConstraintType) Valid() bool {
	switch t {
	case Must, MustNot, Should, ShouldNot:
		return true
	}
	return false
}

// Heading returns the bucket label used by the structured encoding.
func (t ConstraintType) Heading() string {
	return strings.ToUpper(strings.ReplaceAll(string(t), "_", " "))
}

// ParseConstraintType accepts "must_not", "MUST NOT" and "must-not" alike.
func ParseConstraintType(s string) (ConstraintType, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.Join(strings.FieldsFunc(norm, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
	t := ConstraintType(norm)
	return t, t.Valid()
}

// Constraint is a single behavioral rule.
type Constraint struct {
	Type ConstraintType
	Rule string
}

// ExampleKind distinguishes the two example shapes.
type ExampleKind string

const (
	// ExampleConversation is a user/assistant exchange.
	ExampleConversation ExampleKind = "conversation"
	// ExampleIO is an input/output pair.
	ExampleIO ExampleKind = "io"
)

// Example shows the model a sample exchange. Prompt holds the user or input
// side and Response the assistant or output side, depending on Kind.
type Example struct {
	Kind        ExampleKind
	Prompt      string
	Response    string
	Explanation string
}

// Conversation returns a user/assistant example.
func Conversation(user, assistant string) Example {
	return Example{Kind: ExampleConversation, Prompt: user, Response: assistant}
}

// IO returns an input/output example.
func IO(input, output string) Example {
	return Example{Kind: ExampleIO, Prompt: input, Response: output}
}

// WithExplanation returns a copy of e carrying an explanation.
func (e Example) WithExplanation(explanation string) Example {
	e.Explanation = explanation
	return e
}

// Labels returns the names of the two sides of the example.
func (e Example) Labels() (prompt, response string) {
	if e.Kind == ExampleIO {
		return "Input", "Output"
	}
	return "User", "Assistant"
}

func (e Example) normalized() (Example, bool) {
	e.Prompt = strings.TrimSpace(e.Prompt)
	e.Response = strings.TrimSpace(e.Response)
	e.Explanation = strings.TrimSpace(e.Explanation)
	if e.Kind != ExampleIO {
		e.Kind = ExampleConversation
	}
	return e, e.Prompt != "" || e.Response != ""
}

// Tool documents a callable capability in the rendered prompt. Handler is
// never invoked here; it is handed to agent runtimes unchanged.
type Tool struct {
	Name        string
	Description string
	Parameters  *schema.Node
	Handler     server.ToolHandlerFunc
}

// model is the ordered record of every declared section.
type model struct {
	identity        string
	context         string
	capabilities    []string
	tools           []Tool
	constraints     []Constraint
	examples        []Example
	errorHandling   string
	guardrails      bool
	forbiddenTopics []string
	tone            string
	outputFormat    string
	encoding        Encoding
}

func (m *model) empty() bool {
	return m.identity == "" &&
		m.context == "" &&
		len(m.capabilities) == 0 &&
		len(m.tools) == 0 &&
		len(m.constraints) == 0 &&
		len(m.examples) == 0 &&
		m.errorHandling == "" &&
		!m.guardrails &&
		len(m.forbiddenTopics) == 0 &&
		m.tone == "" &&
		m.outputFormat == ""
}

func (m *model) constraintsOf(t ConstraintType) []Constraint {
	var out []Constraint
	for _, c := range m.constraints {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// uniqueTools returns the tools with later duplicates of a name removed.
func (m *model) uniqueTools() []Tool {
	seen := make(map[string]struct{}, len(m.tools))
	out := make([]Tool, 0, len(m.tools))
	for _, t := range m.tools {
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// appendUnique appends items not already present, comparing exact strings.
func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]struct{}, len(list)+len(items))
	for _, s := range list {
		seen[s] = struct{}{}
	}
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		list = append(list, s)
	}
	return list
}
