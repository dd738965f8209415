package promptbuild

import (
	"fmt"
	"strings"

	"github.com/kayz/promptsmith/internal/schema"
)

const (
	titleIdentity     = "Identity"
	titleContext      = "Context"
	titleCapabilities = "Capabilities"
	titleTools        = "Available Tools"
	titleExamples     = "Examples"
	titleGuidelines   = "Behavioral Guidelines"
	titleErrors       = "Error Handling"
	titleGuardrails   = "Security Guardrails"
	titleRestrictions = "Content Restrictions"
	titleStyle        = "Communication Style"
	titleOutputFormat = "Output Format"
)

type section struct {
	title   string
	content string
}

func render(m *model, enc Encoding) string {
	switch enc {
	case EncodingDense:
		return renderDense(m)
	case EncodingCompacted:
		return compact(renderSections(structuredSections(m)))
	default:
		return renderSections(structuredSections(m))
	}
}

// structuredSections lists the populated sections in their fixed order.
func structuredSections(m *model) []section {
	var sections []section
	sections = appendSection(sections, titleIdentity, m.identity)
	sections = appendSection(sections, titleContext, m.context)
	sections = appendSection(sections, titleCapabilities, numbered(m.capabilities))
	sections = appendSection(sections, titleTools, toolsBlock(m.uniqueTools()))
	sections = appendSection(sections, titleExamples, examplesBlock(m.examples))
	sections = appendSection(sections, titleGuidelines, guidelinesBlock(m))
	sections = appendSection(sections, titleErrors, m.errorHandling)
	if m.guardrails {
		sections = appendSection(sections, titleGuardrails, guardrailsBlock())
	}
	if len(m.forbiddenTopics) > 0 {
		sections = appendSection(sections, titleRestrictions, numbered(m.forbiddenTopics)+"\n\n"+restrictionPolicy)
	}
	sections = appendSection(sections, titleStyle, m.tone)
	sections = appendSection(sections, titleOutputFormat, m.outputFormat)
	return sections
}

func appendSection(list []section, title, content string) []section {
	if strings.TrimSpace(content) == "" {
		return list
	}
	return append(list, section{title: title, content: content})
}

func renderSections(sections []section) string {
	var out strings.Builder
	for i, s := range sections {
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString("# ")
		out.WriteString(s.title)
		out.WriteString("\n\n")
		out.WriteString(s.content)
	}
	return out.String()
}

func sectionTitles(sections []section) []string {
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.title)
	}
	return titles
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func toolsBlock(tools []Tool) string {
	blocks := make([]string, 0, len(tools))
	for _, t := range tools {
		var b strings.Builder
		b.WriteString("## ")
		b.WriteString(t.Name)
		b.WriteString("\n\n")
		if t.Description != "" {
			b.WriteString(t.Description)
			b.WriteString("\n\n")
		}
		b.WriteString(parametersBlock(schema.Document(t.Parameters)))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func parametersBlock(params []schema.Param) string {
	if len(params) == 0 {
		return "**Parameters:** None"
	}
	lines := []string{"**Parameters:**"}
	schema.Walk(params, func(p schema.Param, depth int, _ string) {
		lines = append(lines, fmt.Sprintf("%s- `%s` (%s, %s): %s",
			strings.Repeat("  ", depth), p.Name, p.Type, p.Marker(), p.Description))
	})
	return strings.Join(lines, "\n")
}

func examplesBlock(examples []Example) string {
	blocks := make([]string, 0, len(examples))
	for i, ex := range examples {
		promptLabel, responseLabel := ex.Labels()
		lines := []string{fmt.Sprintf("## Example %d", i+1), ""}
		if ex.Prompt != "" {
			lines = append(lines, fmt.Sprintf("**%s:** %s", promptLabel, ex.Prompt))
		}
		if ex.Response != "" {
			lines = append(lines, fmt.Sprintf("**%s:** %s", responseLabel, ex.Response))
		}
		if ex.Explanation != "" {
			lines = append(lines, fmt.Sprintf("**Explanation:** %s", ex.Explanation))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func guidelinesBlock(m *model) string {
	var blocks []string
	for _, t := range ConstraintTypes {
		rules := rulesOf(m.constraintsOf(t))
		if len(rules) == 0 {
			continue
		}
		blocks = append(blocks, "## "+t.Heading()+"\n\n"+bulleted(rules))
	}
	return strings.Join(blocks, "\n\n")
}

func rulesOf(constraints []Constraint) []string {
	rules := make([]string, len(constraints))
	for i, c := range constraints {
		rules[i] = c.Rule
	}
	return rules
}

func guardrailsBlock() string {
	blocks := make([]string, len(guardrails))
	for i, g := range guardrails {
		blocks[i] = "## " + g.title + "\n\n" + g.text
	}
	return strings.Join(blocks, "\n\n")
}

// compact strips trailing whitespace from every line and collapses runs of
// blank lines to one.
func compact(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
