package promptbuild

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kayz/promptsmith/internal/schema"
)

func fullBuilder() *Builder {
	// declared deliberately out of render order
	return New().
		WithOutputFormat("Reply in Markdown.").
		WithTone("Friendly and concise.").
		WithForbiddenTopics("medical advice").
		WithGuardrails().
		WithErrorHandling("Explain failures plainly.").
		WithConstraint(Must, "Cite sources").
		WithExample(Conversation("hi", "hello")).
		WithTool(Tool{Name: "search", Description: "Search the web", Parameters: schema.Object(
			schema.Required("query", schema.String("Search terms")),
		)}).
		WithCapabilities("Answer questions").
		WithContext("Internal support desk.").
		WithIdentity("You are a support agent.")
}

func assertOrder(t *testing.T, out string, markers []string) {
	t.Helper()
	lastPos := -1
	for _, marker := range markers {
		idx := strings.Index(out, marker)
		if idx == -1 {
			t.Fatalf("expected output to contain %q, got:\n%s", marker, out)
		}
		if idx <= lastPos {
			t.Fatalf("expected marker %q after previous marker, got:\n%s", marker, out)
		}
		lastPos = idx
	}
}

func TestRenderEmptyConfiguration(t *testing.T) {
	for _, enc := range Encodings {
		if out := New().RenderAs(enc); out != "" {
			t.Fatalf("expected empty %s render, got %q", enc, out)
		}
	}
}

func TestRenderSectionOrder(t *testing.T) {
	b := fullBuilder()
	expectedOrder := []string{
		"# Identity", "# Context", "# Capabilities", "# Available Tools", "# Examples",
		"# Behavioral Guidelines", "# Error Handling", "# Security Guardrails",
		"# Content Restrictions", "# Communication Style", "# Output Format",
	}
	assertOrder(t, b.RenderAs(EncodingStructured), expectedOrder)
	assertOrder(t, b.RenderAs(EncodingCompacted), expectedOrder)

	sections := b.Sections()
	if len(sections) != len(expectedOrder) {
		t.Fatalf("expected %d sections, got %v", len(expectedOrder), sections)
	}
}

func TestRenderStructuredExactOutput(t *testing.T) {
	b := New().
		WithIdentity("You are a helper.").
		WithCapabilities("A", "B").
		WithTool(Tool{Name: "lookup", Description: "Find a record", Parameters: schema.Object(
			schema.Required("id", schema.String("Record id")),
			schema.Optional("fields", schema.Array(schema.String())),
		)}).
		WithTool(Tool{Name: "ping"}).
		WithExample(IO("2+2", "4").WithExplanation("arithmetic")).
		WithConstraint(Should, "Be brief")

	want := strings.Join([]string{
		"# Identity",
		"",
		"You are a helper.",
		"",
		"# Capabilities",
		"",
		"1. A",
		"2. B",
		"",
		"# Available Tools",
		"",
		"## lookup",
		"",
		"Find a record",
		"",
		"**Parameters:**",
		"- `id` (string, required): Record id",
		"- `fields` (array<string>, optional): No description provided",
		"",
		"## ping",
		"",
		"**Parameters:** None",
		"",
		"# Examples",
		"",
		"## Example 1",
		"",
		"**Input:** 2+2",
		"**Output:** 4",
		"**Explanation:** arithmetic",
		"",
		"# Behavioral Guidelines",
		"",
		"## SHOULD",
		"",
		"- Be brief",
	}, "\n")
	if got := b.Render(); got != want {
		t.Fatalf("unexpected structured render:\n%s\n--- want ---\n%s", got, want)
	}
}

func TestRenderNestedParameters(t *testing.T) {
	b := New().WithTool(Tool{Name: "create", Description: "Create", Parameters: schema.Object(
		schema.Required("filter", schema.Object(
			schema.Optional("site", schema.String()),
		)),
	)})
	out := b.Render()
	if !strings.Contains(out, "- `filter` (object, required): No description provided\n  - `site` (string, optional): No description provided") {
		t.Fatalf("expected indented nested row, got:\n%s", out)
	}
	dense := b.RenderAs(EncodingDense)
	if !strings.Contains(dense, "filter.site (string, optional)") {
		t.Fatalf("expected dotted nested row in dense render, got:\n%s", dense)
	}
}

func TestCapabilityNumberingAcrossCalls(t *testing.T) {
	b := New().WithCapabilities("A").WithCapabilities("", "B", "  ").WithCapabilities("C")
	out := b.Render()
	for _, want := range []string{"1. A", "2. B", "3. C"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "4.") {
		t.Fatalf("unexpected fourth item:\n%s", out)
	}
}

func TestConstraintBucketOrdering(t *testing.T) {
	b := New().
		WithConstraint(Must, "first must").
		WithConstraint(Should, "a should").
		WithConstraint(Must, "second must").
		WithConstraint(MustNot, "a must not").
		WithConstraint(ShouldNot, "a should not")
	out := b.Render()
	assertOrder(t, out, []string{"## MUST\n", "- first must", "- second must", "## MUST NOT", "## SHOULD\n", "## SHOULD NOT"})

	must := b.ConstraintsOf(Must)
	if len(must) != 2 || must[0].Rule != "first must" || must[1].Rule != "second must" {
		t.Fatalf("unexpected must bucket: %#v", must)
	}
}

func TestBlankInputsAreDropped(t *testing.T) {
	b := New().
		WithIdentity("   ").
		WithCapabilities("", " ").
		WithConstraint(Must, "\t").
		WithConstraint(ConstraintType("bogus"), "rule").
		WithExample(Conversation(" ", "")).
		WithTool(Tool{Name: "  ", Description: "no name"}).
		WithForbiddenTopics("", "  ")
	if !b.IsEmpty() {
		t.Fatalf("expected builder to stay empty, summary: %#v", b.Summary())
	}
	if stats := b.CacheStats(); !stats.Dirty || len(stats.Encodings) != 0 {
		t.Fatalf("unexpected cache stats: %#v", stats)
	}
}

func TestForbiddenTopicsDeduplicate(t *testing.T) {
	b := New().WithForbiddenTopics("politics", "weapons").WithForbiddenTopics("politics", "gambling")
	out := b.Render()
	if strings.Count(out, "politics") != 1 {
		t.Fatalf("expected politics once:\n%s", out)
	}
	if !strings.Contains(out, "3. gambling") || !strings.Contains(out, restrictionPolicy) {
		t.Fatalf("unexpected restrictions section:\n%s", out)
	}
}

func TestLastWriteWins(t *testing.T) {
	b := New().WithIdentity("first").WithIdentity("second").WithTone("calm").WithTone("direct")
	out := b.Render()
	if strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected last identity to win:\n%s", out)
	}
	if strings.Contains(out, "calm") || !strings.Contains(out, "direct") {
		t.Fatalf("expected last tone to win:\n%s", out)
	}
}

func TestRenderIsCachedUntilMutation(t *testing.T) {
	b := New().WithIdentity("You are terse.").WithCapabilities("Summarize")
	first := b.RenderAs(EncodingStructured)
	again := b.RenderAs(EncodingStructured)
	if first != again {
		t.Fatalf("expected identical renders without mutation")
	}
	stats := b.CacheStats()
	if stats.Dirty || len(stats.Encodings) != 1 || stats.Size != len(first) {
		t.Fatalf("unexpected cache stats: %#v", stats)
	}

	b.WithCapabilities("Translate")
	if stats := b.CacheStats(); !stats.Dirty || len(stats.Encodings) != 0 {
		t.Fatalf("expected cache cleared after mutation: %#v", stats)
	}
	second := b.RenderAs(EncodingStructured)
	if second == first || !strings.Contains(second, "2. Translate") {
		t.Fatalf("expected re-render with new capability:\n%s", second)
	}
}

func TestCacheHoldsEveryRenderedEncoding(t *testing.T) {
	b := New().WithIdentity("x")
	s := b.RenderAs(EncodingStructured)
	d := b.RenderAs(EncodingDense)
	stats := b.CacheStats()
	if len(stats.Encodings) != 2 || stats.Encodings[0] != EncodingStructured || stats.Encodings[1] != EncodingDense {
		t.Fatalf("unexpected cached encodings: %#v", stats.Encodings)
	}
	if stats.Size != len(s)+len(d) {
		t.Fatalf("expected size %d, got %d", len(s)+len(d), stats.Size)
	}
}

func TestRenderUsesConfiguredEncoding(t *testing.T) {
	b := New().WithIdentity("x").WithEncoding(EncodingDense)
	if got := b.Render(); got != "Identity: x" {
		t.Fatalf("expected dense render, got %q", got)
	}
	if got := b.RenderAs(EncodingStructured); got != "# Identity\n\nx" {
		t.Fatalf("expected override to win, got %q", got)
	}
	b.WithEncoding(Encoding("yaml"))
	if b.Encoding() != EncodingDense {
		t.Fatalf("expected unknown encoding to be ignored")
	}
}

func TestConditionalMutations(t *testing.T) {
	b := New().WithConstraint(Must, "Be accurate")
	before := b.Render()
	count := len(b.ConstraintsOf(Must))

	b.WithConstraintIf(false, Must, "X").
		WithIdentityIf(false, "id").
		WithCapabilitiesIf(false, "cap").
		WithToolIf(false, Tool{Name: "t"}).
		WithExampleIf(false, IO("a", "b")).
		WithGuardrailsIf(false).
		WithForbiddenTopicsIf(false, "topic").
		WithToneIf(false, "tone").
		WithOutputFormatIf(false, "json").
		WithContextIf(false, "ctx").
		WithErrorHandlingIf(false, "retry").
		If(false, func(b *Builder) { b.WithIdentity("nope") })

	if len(b.ConstraintsOf(Must)) != count {
		t.Fatalf("expected constraint count unchanged")
	}
	if stats := b.CacheStats(); stats.Dirty {
		t.Fatalf("expected no invalidation from false predicates")
	}
	if after := b.Render(); after != before {
		t.Fatalf("expected render unchanged:\n%s", after)
	}

	b.WithConstraintIf(true, Must, "X").If(true, func(b *Builder) { b.WithTone("warm") })
	if len(b.ConstraintsOf(Must)) != count+1 || !b.HasTone() {
		t.Fatalf("expected true predicates to apply")
	}
}

func TestSummary(t *testing.T) {
	b := fullBuilder().Should("Be kind").Should("Be brief").MustNot("Guess")
	s := b.Summary()
	if !s.HasIdentity || !s.HasContext || !s.Guardrails || !s.HasTone || !s.HasOutputFormat || !s.HasErrorHandling {
		t.Fatalf("unexpected flags: %#v", s)
	}
	if s.Capabilities != 1 || s.Tools != 1 || s.Examples != 1 || s.ForbiddenTopics != 1 || s.Constraints != 4 {
		t.Fatalf("unexpected counts: %#v", s)
	}
	if s.ConstraintsByType[Must] != 1 || s.ConstraintsByType[Should] != 2 || s.ConstraintsByType[MustNot] != 1 || s.ConstraintsByType[ShouldNot] != 0 {
		t.Fatalf("unexpected bucket counts: %#v", s.ConstraintsByType)
	}
	if s.Encoding != EncodingStructured {
		t.Fatalf("unexpected encoding: %s", s.Encoding)
	}
	if b.CacheStats().Size != 0 {
		t.Fatalf("queries must not populate the cache")
	}
}

func TestNewReturnsIndependentBuilders(t *testing.T) {
	a, b := New(), New()
	if a == b || a.ID() == b.ID() {
		t.Fatalf("expected distinct builders")
	}
	a.WithIdentity("only a")
	if b.HasIdentity() {
		t.Fatalf("builders must not share state")
	}
}

func TestDeriveChildCopiesOnlyEncoding(t *testing.T) {
	parent := fullBuilder().WithEncoding(EncodingCompacted)
	parent.Render()
	child := parent.DeriveChild()
	if child == parent || !child.IsEmpty() {
		t.Fatalf("expected a fresh empty child")
	}
	if child.Encoding() != EncodingCompacted {
		t.Fatalf("expected child to inherit encoding, got %s", child.Encoding())
	}
	child.WithIdentity("child")
	if parent.CacheStats().Dirty {
		t.Fatalf("child mutation must not touch the parent cache")
	}
}

func TestGuardrailsSectionIsStatic(t *testing.T) {
	out := New().WithGuardrails().Render()
	assertOrder(t, out, []string{"## Input Isolation", "## Role Protection", "## Instruction Separation", "## Output Safety"})
	for _, g := range guardrails {
		if !strings.Contains(out, g.text) {
			t.Fatalf("missing guardrail text for %s", g.title)
		}
	}
}

func TestDenseRender(t *testing.T) {
	b := New().
		WithIdentity("You are\na bot.").
		WithCapabilities("A", "B").
		WithTool(Tool{Name: "search", Description: "Search", Parameters: schema.Object(
			schema.Required("q", schema.String("Query")),
			schema.Optional("limit", schema.Number()),
		)}).
		WithExample(Conversation("hi", "hello").WithExplanation("greeting")).
		WithConstraint(MustNot, "Lie").
		WithConstraint(Must, "Help").
		WithForbiddenTopics("x").
		WithTone("warm")

	want := strings.Join([]string{
		"Identity: You are a bot.",
		"Capabilities[2]:",
		"1. A",
		"2. B",
		"Tools[1]:",
		"- search: Search | params: q (string, required): Query; limit (number, optional): No description provided",
		"Examples[1]:",
		"1. User: hi | Assistant: hello | Explanation: greeting",
		"Guidelines[2]:",
		"MUST[1]:",
		"- Help",
		"MUST_NOT[1]:",
		"- Lie",
		"Restrictions[1]:",
		"1. x",
		"RestrictionPolicy: " + restrictionPolicy,
		"Tone: warm",
	}, "\n")
	if got := b.RenderAs(EncodingDense); got != want {
		t.Fatalf("unexpected dense render:\n%s\n--- want ---\n%s", got, want)
	}
	if strings.Contains(b.RenderAs(EncodingDense), "\n\n") {
		t.Fatalf("dense render must not contain blank lines")
	}
}

func TestCompactedCollapsesBlankRuns(t *testing.T) {
	b := New().
		WithIdentity("line one   \n\n\n\nline two").
		WithContext("ctx\n \n\t\nmore")
	structured := b.RenderAs(EncodingStructured)
	compacted := b.RenderAs(EncodingCompacted)
	if !strings.Contains(structured, "\n\n\n") {
		t.Fatalf("expected structured render to keep user blank lines")
	}
	if strings.Contains(compacted, "\n\n\n") {
		t.Fatalf("expected no blank-line runs in compacted render:\n%q", compacted)
	}
	want := "# Identity\n\nline one\n\nline two\n\n# Context\n\nctx\n\nmore"
	if compacted != want {
		t.Fatalf("unexpected compacted render:\n%q\nwant\n%q", compacted, want)
	}
}

func TestDuplicateToolsRenderOnce(t *testing.T) {
	b := New().
		WithTool(Tool{Name: "x", Description: "first"}).
		WithTool(Tool{Name: "x", Description: "second"})
	out := b.Render()
	if strings.Count(out, "## x") != 1 || !strings.Contains(out, "first") || strings.Contains(out, "second") {
		t.Fatalf("expected first declaration only:\n%s", out)
	}
	if len(b.Tools()) != 2 {
		t.Fatalf("expected both declarations kept in the model")
	}
}

func TestSummaryAndCacheStatsUseCamelCaseKeys(t *testing.T) {
	b := fullBuilder()
	b.Render()

	data, err := json.Marshal(map[string]any{"summary": b.Summary(), "cache": b.CacheStats()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, key := range []string{`"hasIdentity":true`, `"forbiddenTopics":1`, `"constraintsByType"`, `"dirty":false`, `"encodings"`, `"size":1`} {
		if !strings.Contains(got, key) {
			t.Fatalf("expected %s in %s", key, got)
		}
	}
	if strings.Contains(got, `"HasIdentity"`) || strings.Contains(got, `"Dirty"`) {
		t.Fatalf("expected no Go field names in %s", got)
	}
}
