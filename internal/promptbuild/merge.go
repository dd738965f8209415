package promptbuild

import (
	"errors"
	"fmt"

	"github.com/kayz/promptsmith/internal/logger"
)

// ErrDuplicateToolName is matched by errors.Is for merge collisions.
var ErrDuplicateToolName = errors.New("duplicate tool name")

// DuplicateToolError reports a tool name present in both merged builders.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateToolName, e.Name)
}

func (e *DuplicateToolError) Is(target error) bool {
	return target == ErrDuplicateToolName
}

// Merge folds src into b and returns b.
//
// Capabilities and forbidden topics are unioned with exact-string dedup,
// tools, constraints and examples are concatenated with b's entries first,
// context is joined, guardrails are OR-ed, and identity, tone, output format
// and error handling keep b's value when it has one. The encoding is never
// taken from src. If a tool name exists in both builders nothing is changed
// and a *DuplicateToolError is returned.
func (b *Builder) Merge(src *Builder) (*Builder, error) {
	if src == nil {
		return b, nil
	}
	if name, ok := toolCollision(b.m.tools, src.m.tools); ok {
		logger.Warn("promptbuild %s: merge from %s rejected, tool %q declared in both", b.id, src.id, name)
		return b, &DuplicateToolError{Name: name}
	}
	if src.m.empty() {
		return b, nil
	}

	m, s := &b.m, &src.m
	m.capabilities = appendUnique(m.capabilities, s.capabilities...)
	m.tools = append(m.tools, s.tools...)
	m.constraints = append(m.constraints, s.constraints...)
	m.examples = append(m.examples, s.examples...)
	m.forbiddenTopics = appendUnique(m.forbiddenTopics, s.forbiddenTopics...)

	switch {
	case m.context != "" && s.context != "":
		m.context = m.context + "\n\n" + s.context
	case m.context == "":
		m.context = s.context
	}

	m.identity = firstNonEmpty(m.identity, s.identity)
	m.tone = firstNonEmpty(m.tone, s.tone)
	m.outputFormat = firstNonEmpty(m.outputFormat, s.outputFormat)
	m.errorHandling = firstNonEmpty(m.errorHandling, s.errorHandling)
	m.guardrails = m.guardrails || s.guardrails

	b.changed()
	logger.Debug("promptbuild %s: merged %s", b.id, src.id)
	return b, nil
}

func toolCollision(base, src []Tool) (string, bool) {
	names := make(map[string]struct{}, len(base))
	for _, t := range base {
		names[t.Name] = struct{}{}
	}
	for _, t := range src {
		if _, ok := names[t.Name]; ok {
			return t.Name, true
		}
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
