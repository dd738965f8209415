package promptbuild

import (
	"context"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayz/promptsmith/internal/schema"
)

func TestExportConfigRoundTrip(t *testing.T) {
	b := fullBuilder().
		WithTool(Tool{Name: "fetch", Description: "Fetch a page", Parameters: schema.Object(
			schema.Required("url", schema.String("Page URL")),
			schema.Optional("depth", schema.Number()),
			schema.Optional("headers", schema.Object(
				schema.Optional("user_agent", schema.String()),
				schema.Optional("accept", schema.String()),
			)),
		)}).
		WithExample(IO("2+2", "4").WithExplanation("math")).
		Should("Be brief").
		WithEncoding(EncodingDense)

	cfg := b.ExportConfig()
	rebuilt := FromConfig(cfg)
	if !reflect.DeepEqual(rebuilt.ExportConfig(), cfg) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", rebuilt.ExportConfig(), cfg)
	}
	if rebuilt.Render() != b.Render() {
		t.Fatalf("expected identical render after round trip:\n%s\n--- want ---\n%s", rebuilt.Render(), b.Render())
	}
	assertOrder(t, rebuilt.Render(), []string{"`url`", "`depth`", "`headers`", "`user_agent`", "`accept`"})
}

func TestExportConfigReadsLiveModel(t *testing.T) {
	b := New().WithIdentity("first")
	b.Render()
	b.WithIdentity("second")
	if got := b.ExportConfig().Identity; got != "second" {
		t.Fatalf("expected live identity, got %q", got)
	}
}

func TestExportConfigEmptyLists(t *testing.T) {
	cfg := New().ExportConfig()
	if cfg.Capabilities == nil || cfg.Tools == nil || cfg.Constraints == nil || cfg.Examples == nil || cfg.ForbiddenTopics == nil {
		t.Fatalf("expected empty, non-nil lists: %#v", cfg)
	}
	if cfg.RenderEncoding != EncodingStructured {
		t.Fatalf("unexpected encoding: %s", cfg.RenderEncoding)
	}
}

func TestExportRuntime(t *testing.T) {
	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	}
	params := schema.Object(schema.Required("q", schema.String("query")))
	b := New().
		WithIdentity("agent").
		WithTool(Tool{Name: "search", Description: "first", Parameters: params, Handler: handler}).
		WithTool(Tool{Name: "noop", Description: "nothing"}).
		WithTool(Tool{Name: "search", Description: "second"})

	rt := b.ExportRuntime()
	if rt.Text != b.Render() {
		t.Fatalf("expected runtime text to equal Render()")
	}
	if len(rt.Tools) != 2 || !reflect.DeepEqual(rt.Order, []string{"search", "noop"}) {
		t.Fatalf("unexpected tools: %#v order %v", rt.Tools, rt.Order)
	}
	search := rt.Tools["search"]
	if search.Description != "first" || search.Parameters != params {
		t.Fatalf("expected first declaration to win: %#v", search)
	}
	if _, err := search.Handler(context.Background(), mcp.CallToolRequest{}); err != nil || !called {
		t.Fatalf("expected handler passed through unchanged")
	}
	if rt.Tools["noop"].Handler != nil {
		t.Fatalf("expected nil handler for noop")
	}
}
