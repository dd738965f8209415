package promptbuild

import (
	"fmt"
	"strings"

	"github.com/kayz/promptsmith/internal/schema"
)

// renderDense writes one colon-delimited item per line with no headings and
// no blank lines. Multi-line values are folded onto a single line.
func renderDense(m *model) string {
	var lines []string
	field := func(key, value string) {
		if value != "" {
			lines = append(lines, key+": "+fold(value))
		}
	}

	field("Identity", m.identity)
	field("Context", m.context)

	if n := len(m.capabilities); n > 0 {
		lines = append(lines, fmt.Sprintf("Capabilities[%d]:", n))
		lines = append(lines, denseNumbered(m.capabilities)...)
	}

	if tools := m.uniqueTools(); len(tools) > 0 {
		lines = append(lines, fmt.Sprintf("Tools[%d]:", len(tools)))
		for _, t := range tools {
			lines = append(lines, denseTool(t))
		}
	}

	if n := len(m.examples); n > 0 {
		lines = append(lines, fmt.Sprintf("Examples[%d]:", n))
		for i, ex := range m.examples {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, denseExample(ex)))
		}
	}

	if n := len(m.constraints); n > 0 {
		lines = append(lines, fmt.Sprintf("Guidelines[%d]:", n))
		for _, t := range ConstraintTypes {
			rules := rulesOf(m.constraintsOf(t))
			if len(rules) == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s[%d]:", strings.ToUpper(string(t)), len(rules)))
			for _, r := range rules {
				lines = append(lines, "- "+fold(r))
			}
		}
	}

	field("ErrorHandling", m.errorHandling)

	if m.guardrails {
		lines = append(lines, fmt.Sprintf("Guardrails[%d]:", len(guardrails)))
		for _, g := range guardrails {
			lines = append(lines, g.key+": "+g.text)
		}
	}

	if n := len(m.forbiddenTopics); n > 0 {
		lines = append(lines, fmt.Sprintf("Restrictions[%d]:", n))
		lines = append(lines, denseNumbered(m.forbiddenTopics)...)
		lines = append(lines, "RestrictionPolicy: "+restrictionPolicy)
	}

	field("Tone", m.tone)
	field("OutputFormat", m.outputFormat)

	return strings.Join(lines, "\n")
}

func denseNumbered(items []string) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, fold(item))
	}
	return lines
}

func denseTool(t Tool) string {
	head := "- " + t.Name
	if t.Description != "" {
		head += ": " + fold(t.Description)
	}
	var rows []string
	schema.Walk(schema.Document(t.Parameters), func(p schema.Param, _ int, path string) {
		rows = append(rows, fmt.Sprintf("%s (%s, %s): %s", path, p.Type, p.Marker(), fold(p.Description)))
	})
	if len(rows) == 0 {
		return head + " | params: none"
	}
	return head + " | params: " + strings.Join(rows, "; ")
}

func denseExample(ex Example) string {
	promptLabel, responseLabel := ex.Labels()
	var parts []string
	if ex.Prompt != "" {
		parts = append(parts, promptLabel+": "+fold(ex.Prompt))
	}
	if ex.Response != "" {
		parts = append(parts, responseLabel+": "+fold(ex.Response))
	}
	if ex.Explanation != "" {
		parts = append(parts, "Explanation: "+fold(ex.Explanation))
	}
	return strings.Join(parts, " | ")
}

// fold collapses every run of whitespace, newlines included, to one space.
func fold(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
