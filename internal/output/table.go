package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kayz/promptsmith/internal/persist"
	"github.com/kayz/promptsmith/internal/promptbuild"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// SummaryTable lists what a builder holds and the state of its cache.
func SummaryTable(s promptbuild.Summary, stats promptbuild.CacheStats) string {
	t := newTable()
	t.AppendHeader(table.Row{"Section", "Value"})
	t.AppendRow(table.Row{"Identity", yesNo(s.HasIdentity)})
	t.AppendRow(table.Row{"Context", yesNo(s.HasContext)})
	t.AppendRow(table.Row{"Capabilities", s.Capabilities})
	t.AppendRow(table.Row{"Tools", s.Tools})
	t.AppendRow(table.Row{"Examples", s.Examples})
	for _, ct := range promptbuild.ConstraintTypes {
		t.AppendRow(table.Row{"Constraints " + ct.Heading(), s.ConstraintsByType[ct]})
	}
	t.AppendRow(table.Row{"Error Handling", yesNo(s.HasErrorHandling)})
	t.AppendRow(table.Row{"Guardrails", yesNo(s.Guardrails)})
	t.AppendRow(table.Row{"Forbidden Topics", s.ForbiddenTopics})
	t.AppendRow(table.Row{"Tone", yesNo(s.HasTone)})
	t.AppendRow(table.Row{"Output Format", yesNo(s.HasOutputFormat)})
	t.AppendRow(table.Row{"Encoding", string(s.Encoding)})

	cached := "none"
	if len(stats.Encodings) > 0 {
		names := make([]string, len(stats.Encodings))
		for i, enc := range stats.Encodings {
			names[i] = string(enc)
		}
		cached = strings.Join(names, ", ")
	}
	t.AppendRow(table.Row{"Cache", fmt.Sprintf("%s (%d chars, dirty=%t)", cached, stats.Size, stats.Dirty)})
	return t.Render()
}

// ReportTable renders validation findings, errors first.
func ReportTable(r promptbuild.Report) string {
	t := newTable()
	t.AppendHeader(table.Row{"Level", "Code", "Message"})
	for _, f := range r.Errors {
		t.AppendRow(table.Row{"error", f.Code, f.Message})
	}
	for _, f := range r.Warnings {
		t.AppendRow(table.Row{"warning", f.Code, f.Message})
	}
	for _, f := range r.Info {
		t.AppendRow(table.Row{"info", f.Code, f.Message})
	}

	status := "valid"
	if !r.Valid {
		status = "invalid"
	}
	t.AppendFooter(table.Row{"", status, fmt.Sprintf("%d errors, %d warnings, %d info", len(r.Errors), len(r.Warnings), len(r.Info))})
	return t.Render()
}

// ConfigsTable lists saved configurations.
func ConfigsTable(configs []*persist.SavedConfig) string {
	t := newTable()
	t.AppendHeader(table.Row{"Name", "Digest", "Updated"})
	for _, c := range configs {
		if c == nil {
			continue
		}
		t.AppendRow(table.Row{c.Name, shortDigest(c.Digest), c.UpdatedAt.Local().Format("2006-01-02 15:04")})
	}
	return t.Render()
}

// RendersTable lists stored renders.
func RendersTable(records []*persist.RenderRecord) string {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Config", "Encoding", "Chars", "Digest", "Created"})
	for _, r := range records {
		if r == nil {
			continue
		}
		name := r.ConfigName
		if name == "" {
			name = "-"
		}
		t.AppendRow(table.Row{
			shortDigest(r.ID),
			name,
			string(r.Encoding),
			r.Chars,
			shortDigest(r.Digest),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return t.Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func shortDigest(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
