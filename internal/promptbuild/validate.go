package promptbuild

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kayz/promptsmith/internal/config"
)

// Validation codes.
const (
	CodeDuplicateToolName      = "DUPLICATE_TOOL_NAME"
	CodeEmptyConfiguration     = "EMPTY_CONFIGURATION"
	CodeMissingIdentity        = "MISSING_IDENTITY"
	CodeMissingToolDescription = "MISSING_TOOL_DESCRIPTION"
	CodeInvalidToolName        = "INVALID_TOOL_NAME"
	CodeConflictingConstraints = "CONFLICTING_CONSTRAINTS"
	CodeToolsWithoutGuardrails = "TOOLS_WITHOUT_GUARDRAILS"
	CodeNoExamples             = "NO_EXAMPLES"
	CodeNoOutputFormat         = "NO_OUTPUT_FORMAT"
	CodeNoConstraints          = "NO_CONSTRAINTS"
)

// Most function-calling APIs reject tool names outside this set.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Finding is one validation result.
type Finding struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Report collects validation findings. Valid is false when Errors is not
// empty.
type Report struct {
	Valid    bool      `json:"valid" yaml:"valid"`
	Errors   []Finding `json:"errors" yaml:"errors"`
	Warnings []Finding `json:"warnings" yaml:"warnings"`
	Info     []Finding `json:"info" yaml:"info"`
}

func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// ValidateOptions switches individual checks off. The zero value runs
// every check.
type ValidateOptions struct {
	DisableIdentityCheck        bool
	DisableToolDescriptionCheck bool
	DisableToolNameCheck        bool
	DisableConflictCheck        bool
	DisableGuardrailsCheck      bool
	DisableRecommendations      bool
}

// ValidateOptionsFrom maps config switches onto validator options.
func ValidateOptionsFrom(cfg config.ValidationConfig) ValidateOptions {
	return ValidateOptions{
		DisableIdentityCheck:        cfg.DisableIdentityCheck,
		DisableToolDescriptionCheck: cfg.DisableToolDescriptionCheck,
		DisableToolNameCheck:        cfg.DisableToolNameCheck,
		DisableConflictCheck:        cfg.DisableConflictCheck,
		DisableGuardrailsCheck:      cfg.DisableGuardrailsCheck,
		DisableRecommendations:      cfg.DisableRecommendations,
	}
}

// Validate inspects the configuration without changing it.
func (b *Builder) Validate(opts ValidateOptions) Report {
	m := &b.m
	r := Report{Errors: []Finding{}, Warnings: []Finding{}, Info: []Finding{}}
	addError := func(code, format string, args ...any) {
		r.Errors = append(r.Errors, Finding{Code: code, Message: fmt.Sprintf(format, args...)})
	}
	addWarning := func(code, format string, args ...any) {
		r.Warnings = append(r.Warnings, Finding{Code: code, Message: fmt.Sprintf(format, args...)})
	}
	addInfo := func(code, format string, args ...any) {
		r.Info = append(r.Info, Finding{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if m.empty() {
		addError(CodeEmptyConfiguration, "no sections are configured; the prompt renders empty")
	}

	counts := make(map[string]int, len(m.tools))
	for _, t := range m.tools {
		counts[t.Name]++
		if counts[t.Name] == 2 {
			addError(CodeDuplicateToolName, "tool %q is declared more than once", t.Name)
		}
	}

	if !opts.DisableIdentityCheck && m.identity == "" {
		addWarning(CodeMissingIdentity, "no identity is set; the model will not know what role to play")
	}

	for _, t := range m.uniqueTools() {
		if !opts.DisableToolDescriptionCheck && t.Description == "" {
			addWarning(CodeMissingToolDescription, "tool %q has no description", t.Name)
		}
		if !opts.DisableToolNameCheck && !toolNamePattern.MatchString(t.Name) {
			addWarning(CodeInvalidToolName, "tool %q should only use letters, digits, '_' and '-'", t.Name)
		}
	}

	if !opts.DisableConflictCheck {
		for _, pair := range [][2]ConstraintType{{Must, MustNot}, {Should, ShouldNot}} {
			for _, rule := range conflictingRules(m.constraintsOf(pair[0]), m.constraintsOf(pair[1])) {
				addWarning(CodeConflictingConstraints, "rule %q appears under both %s and %s", rule, pair[0].Heading(), pair[1].Heading())
			}
		}
	}

	if !opts.DisableGuardrailsCheck && len(m.tools) > 0 && !m.guardrails {
		addWarning(CodeToolsWithoutGuardrails, "tools are declared but security guardrails are disabled")
	}

	if !opts.DisableRecommendations {
		if len(m.examples) == 0 {
			addInfo(CodeNoExamples, "consider adding examples to anchor the expected behavior")
		}
		if m.outputFormat == "" {
			addInfo(CodeNoOutputFormat, "consider describing the expected output format")
		}
		if len(m.constraints) == 0 {
			addInfo(CodeNoConstraints, "consider adding behavioral constraints")
		}
	}

	r.Valid = !r.HasErrors()
	return r
}

func conflictingRules(a, b []Constraint) []string {
	seen := make(map[string]struct{}, len(a))
	for _, c := range a {
		seen[strings.ToLower(c.Rule)] = struct{}{}
	}
	var out []string
	reported := make(map[string]struct{})
	for _, c := range b {
		key := strings.ToLower(c.Rule)
		if _, ok := seen[key]; !ok {
			continue
		}
		if _, done := reported[key]; done {
			continue
		}
		reported[key] = struct{}{}
		out = append(out, c.Rule)
	}
	return out
}
