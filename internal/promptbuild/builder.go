package promptbuild

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kayz/promptsmith/internal/logger"
)

// Builder assembles a system prompt from declared sections.
//
// Mutating methods return the receiver so calls can be chained. A Builder is
// not safe for concurrent use; use DeriveChild or one Builder per request.
type Builder struct {
	id    string
	m     model
	cache renderCache
}

// New returns an empty Builder rendering the structured encoding.
func New() *Builder {
	return &Builder{
		id:    uuid.NewString(),
		m:     model{encoding: EncodingStructured},
		cache: newRenderCache(),
	}
}

// ID identifies the builder in logs and audit records.
func (b *Builder) ID() string {
	return b.id
}

func (b *Builder) changed() {
	b.cache.invalidate()
}

// WithIdentity sets who the model is. Blank input is ignored.
func (b *Builder) WithIdentity(identity string) *Builder {
	if s := strings.TrimSpace(identity); s != "" {
		b.m.identity = s
		b.changed()
	}
	return b
}

// WithContext sets background information, replacing any earlier value.
func (b *Builder) WithContext(context string) *Builder {
	if s := strings.TrimSpace(context); s != "" {
		b.m.context = s
		b.changed()
	}
	return b
}

// WithCapabilities appends capabilities in order, skipping blank entries.
func (b *Builder) WithCapabilities(capabilities ...string) *Builder {
	if items := cleanList(capabilities); len(items) > 0 {
		b.m.capabilities = append(b.m.capabilities, items...)
		b.changed()
	}
	return b
}

// WithTool appends a tool. Tools without a name are dropped; duplicate names
// are accepted here and reported by Validate and Merge.
func (b *Builder) WithTool(tool Tool) *Builder {
	return b.WithTools(tool)
}

// WithTools appends tools in order. Blank names are dropped.
func (b *Builder) WithTools(tools ...Tool) *Builder {
	added := false
	for _, t := range tools {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			continue
		}
		t.Description = strings.TrimSpace(t.Description)
		b.m.tools = append(b.m.tools, t)
		added = true
	}
	if added {
		b.changed()
	}
	return b
}

// WithConstraint adds a rule to one of the guideline buckets. Unknown
// bucket types and blank rules are ignored.
func (b *Builder) WithConstraint(kind ConstraintType, rule string) *Builder {
	rule = strings.TrimSpace(rule)
	if rule == "" || !kind.Valid() {
		return b
	}
	b.m.constraints = append(b.m.constraints, Constraint{Type: kind, Rule: rule})
	b.changed()
	return b
}

// Must adds a hard requirement.
func (b *Builder) Must(rule string) *Builder { return b.WithConstraint(Must, rule) }

// MustNot adds a hard prohibition.
func (b *Builder) MustNot(rule string) *Builder { return b.WithConstraint(MustNot, rule) }

// Should adds a preference.
func (b *Builder) Should(rule string) *Builder { return b.WithConstraint(Should, rule) }

// ShouldNot adds something to avoid when possible.
func (b *Builder) ShouldNot(rule string) *Builder { return b.WithConstraint(ShouldNot, rule) }

// WithExample appends an example unless both of its sides are blank.
func (b *Builder) WithExample(example Example) *Builder {
	return b.WithExamples(example)
}

// WithExamples appends each example with the same rules as WithExample.
func (b *Builder) WithExamples(examples ...Example) *Builder {
	added := false
	for _, ex := range examples {
		if ex, ok := ex.normalized(); ok {
			b.m.examples = append(b.m.examples, ex)
			added = true
		}
	}
	if added {
		b.changed()
	}
	return b
}

// WithErrorHandling sets the policy for failed tool calls and bad input.
func (b *Builder) WithErrorHandling(policy string) *Builder {
	if s := strings.TrimSpace(policy); s != "" {
		b.m.errorHandling = s
		b.changed()
	}
	return b
}

// WithGuardrails turns on the security guardrails section. There is no way
// to turn it off again.
func (b *Builder) WithGuardrails() *Builder {
	if !b.m.guardrails {
		b.m.guardrails = true
		b.changed()
	}
	return b
}

// WithForbiddenTopics adds topics the model must decline, ignoring ones
// already present.
func (b *Builder) WithForbiddenTopics(topics ...string) *Builder {
	items := cleanList(topics)
	if len(items) == 0 {
		return b
	}
	before := len(b.m.forbiddenTopics)
	b.m.forbiddenTopics = appendUnique(b.m.forbiddenTopics, items...)
	if len(b.m.forbiddenTopics) != before {
		b.changed()
	}
	return b
}

// WithTone sets the tone section.
func (b *Builder) WithTone(tone string) *Builder {
	if s := strings.TrimSpace(tone); s != "" {
		b.m.tone = s
		b.changed()
	}
	return b
}

// WithOutputFormat describes the shape answers should take.
func (b *Builder) WithOutputFormat(format string) *Builder {
	if s := strings.TrimSpace(format); s != "" {
		b.m.outputFormat = s
		b.changed()
	}
	return b
}

// WithEncoding sets the encoding used by Render. Unknown encodings are
// ignored.
func (b *Builder) WithEncoding(enc Encoding) *Builder {
	if enc.Valid() {
		b.m.encoding = enc
		b.changed()
	}
	return b
}

// If runs fn against the builder when cond is true.
func (b *Builder) If(cond bool, fn func(*Builder)) *Builder {
	if cond && fn != nil {
		fn(b)
	}
	return b
}

// WithIdentityIf calls WithIdentity when cond is true.
func (b *Builder) WithIdentityIf(cond bool, identity string) *Builder {
	if !cond {
		return b
	}
	return b.WithIdentity(identity)
}

// WithContextIf is WithContext guarded by cond.
func (b *Builder) WithContextIf(cond bool, context string) *Builder {
	if !cond {
		return b
	}
	return b.WithContext(context)
}

// WithCapabilitiesIf appends capabilities only when cond holds.
func (b *Builder) WithCapabilitiesIf(cond bool, capabilities ...string) *Builder {
	if !cond {
		return b
	}
	return b.WithCapabilities(capabilities...)
}

// WithToolIf adds tool when cond is true.
func (b *Builder) WithToolIf(cond bool, tool Tool) *Builder {
	if !cond {
		return b
	}
	return b.WithTool(tool)
}

// WithConstraintIf adds a rule to the kind bucket when cond is true.
func (b *Builder) WithConstraintIf(cond bool, kind ConstraintType, rule string) *Builder {
	if !cond {
		return b
	}
	return b.WithConstraint(kind, rule)
}

// WithExampleIf adds example when cond is true.
func (b *Builder) WithExampleIf(cond bool, example Example) *Builder {
	if !cond {
		return b
	}
	return b.WithExample(example)
}

// WithErrorHandlingIf sets the error policy only when cond holds.
func (b *Builder) WithErrorHandlingIf(cond bool, policy string) *Builder {
	if !cond {
		return b
	}
	return b.WithErrorHandling(policy)
}

// WithGuardrailsIf enables guardrails when cond is true. A false cond
// leaves the current setting alone.
func (b *Builder) WithGuardrailsIf(cond bool) *Builder {
	if !cond {
		return b
	}
	return b.WithGuardrails()
}

// WithForbiddenTopicsIf appends topics when cond is true.
func (b *Builder) WithForbiddenTopicsIf(cond bool, topics ...string) *Builder {
	if !cond {
		return b
	}
	return b.WithForbiddenTopics(topics...)
}

// WithToneIf is WithTone guarded by cond.
func (b *Builder) WithToneIf(cond bool, tone string) *Builder {
	if !cond {
		return b
	}
	return b.WithTone(tone)
}

// WithOutputFormatIf is WithOutputFormat guarded by cond.
func (b *Builder) WithOutputFormatIf(cond bool, format string) *Builder {
	if !cond {
		return b
	}
	return b.WithOutputFormat(format)
}

// HasIdentity reports whether an identity is set.
func (b *Builder) HasIdentity() bool { return b.m.identity != "" }

// HasContext reports whether context is set.
func (b *Builder) HasContext() bool { return b.m.context != "" }

// HasCapabilities reports whether at least one capability is declared.
func (b *Builder) HasCapabilities() bool { return len(b.m.capabilities) > 0 }

// HasTools reports whether any tool is declared, duplicates included.
func (b *Builder) HasTools() bool { return len(b.m.tools) > 0 }

// HasConstraints reports whether any bucket holds a rule.
func (b *Builder) HasConstraints() bool { return len(b.m.constraints) > 0 }

// HasExamples reports whether at least one example is present.
func (b *Builder) HasExamples() bool { return len(b.m.examples) > 0 }

// HasErrorHandling reports whether an error policy is set.
func (b *Builder) HasErrorHandling() bool { return b.m.errorHandling != "" }

// HasGuardrails reports whether the guardrails section is on.
func (b *Builder) HasGuardrails() bool { return b.m.guardrails }

// HasForbiddenTopics reports whether any forbidden topic is listed.
func (b *Builder) HasForbiddenTopics() bool { return len(b.m.forbiddenTopics) > 0 }

// HasTone reports whether a tone is set.
func (b *Builder) HasTone() bool { return b.m.tone != "" }

// HasOutputFormat reports whether an output format is set.
func (b *Builder) HasOutputFormat() bool { return b.m.outputFormat != "" }

// IsEmpty reports whether no section has been populated.
func (b *Builder) IsEmpty() bool {
	return b.m.empty()
}

// Encoding returns the encoding Render uses.
func (b *Builder) Encoding() Encoding {
	return b.m.encoding
}

// ConstraintsOf returns the constraints of one bucket in insertion order.
func (b *Builder) ConstraintsOf(kind ConstraintType) []Constraint {
	return b.m.constraintsOf(kind)
}

// Tools returns a copy of the declared tools, duplicates included.
func (b *Builder) Tools() []Tool {
	return append([]Tool(nil), b.m.tools...)
}

// Summary reports what a builder currently holds.
type Summary struct {
	HasIdentity      bool `json:"hasIdentity" yaml:"hasIdentity"`
	HasContext       bool `json:"hasContext" yaml:"hasContext"`
	HasErrorHandling bool `json:"hasErrorHandling" yaml:"hasErrorHandling"`
	HasTone          bool `json:"hasTone" yaml:"hasTone"`
	HasOutputFormat  bool `json:"hasOutputFormat" yaml:"hasOutputFormat"`
	Guardrails       bool `json:"guardrails" yaml:"guardrails"`

	Capabilities    int `json:"capabilities" yaml:"capabilities"`
	Tools           int `json:"tools" yaml:"tools"`
	Constraints     int `json:"constraints" yaml:"constraints"`
	Examples        int `json:"examples" yaml:"examples"`
	ForbiddenTopics int `json:"forbiddenTopics" yaml:"forbiddenTopics"`

	ConstraintsByType map[ConstraintType]int `json:"constraintsByType" yaml:"constraintsByType"`
	Encoding          Encoding               `json:"encoding" yaml:"encoding"`
}

// Summary counts the populated sections and constraints per bucket.
func (b *Builder) Summary() Summary {
	byType := make(map[ConstraintType]int, len(ConstraintTypes))
	for _, t := range ConstraintTypes {
		byType[t] = 0
	}
	for _, c := range b.m.constraints {
		byType[c.Type]++
	}
	return Summary{
		HasIdentity:       b.HasIdentity(),
		HasContext:        b.HasContext(),
		HasErrorHandling:  b.HasErrorHandling(),
		HasTone:           b.HasTone(),
		HasOutputFormat:   b.HasOutputFormat(),
		Guardrails:        b.m.guardrails,
		Capabilities:      len(b.m.capabilities),
		Tools:             len(b.m.tools),
		Constraints:       len(b.m.constraints),
		Examples:          len(b.m.examples),
		ForbiddenTopics:   len(b.m.forbiddenTopics),
		ConstraintsByType: byType,
		Encoding:          b.m.encoding,
	}
}

// Render returns the prompt in the builder's encoding.
func (b *Builder) Render() string {
	return b.RenderAs("")
}

// RenderAs returns the prompt in enc, or in the builder's encoding when enc
// is empty. Results are cached until the next mutation.
func (b *Builder) RenderAs(enc Encoding) string {
	enc = b.resolveEncoding(enc)
	if text, ok := b.cache.get(enc); ok {
		logger.Trace("promptbuild %s: cache hit for %s", b.id, enc)
		return text
	}
	text := render(&b.m, enc)
	b.cache.put(enc, text)
	logger.Debug("promptbuild %s: rendered %s (%d chars)", b.id, enc, len(text))
	return text
}

func (b *Builder) resolveEncoding(enc Encoding) Encoding {
	if enc.Valid() {
		return enc
	}
	if b.m.encoding.Valid() {
		return b.m.encoding
	}
	return EncodingStructured
}

// Sections returns the titles of the sections Render would emit, in order.
func (b *Builder) Sections() []string {
	return sectionTitles(structuredSections(&b.m))
}

// CacheStats reports the state of the render cache.
func (b *Builder) CacheStats() CacheStats {
	return b.cache.stats()
}

// DeriveChild returns a new, empty Builder sharing only the encoding.
func (b *Builder) DeriveChild() *Builder {
	child := New()
	child.m.encoding = b.m.encoding
	return child
}
