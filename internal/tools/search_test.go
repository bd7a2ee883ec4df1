package tools

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"sprintline/internal/api"
)

func TestSearchTool_RendersRankedMatches(t *testing.T) {
	b := newFakeBackend(t)
	b.matches = []api.SearchMatch{
		{Kind: "backlog_item", ID: "item-7", Title: "OAuth login", Snippet: "support Google OAuth", Score: 0.91},
		{Kind: "task", ID: "task-3", Title: "Add OAuth client", Score: 0.74},
	}
	tool := NewSearchTool(b.client(), zap.NewNop())

	result, err := tool.Handle(authedCtx(), callReq(map[string]interface{}{"query": "oauth"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	text := getResultText(result)
	if !strings.Contains(text, "OAuth login") || !strings.Contains(text, "0.91") {
		t.Errorf("matches should be rendered with scores, got:\n%s", text)
	}
	if !strings.Contains(text, "support Google OAuth") {
		t.Errorf("snippets should be rendered, got:\n%s", text)
	}
}

func TestSearchTool_NoMatches(t *testing.T) {
	b := newFakeBackend(t)
	tool := NewSearchTool(b.client(), zap.NewNop())

	result, err := tool.Handle(authedCtx(), callReq(map[string]interface{}{"query": "nothing here"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "No matches") {
		t.Errorf("empty result should say so, got: %s", getResultText(result))
	}
}

func TestSearchTool_LimitValidated(t *testing.T) {
	b := newFakeBackend(t)
	tool := NewSearchTool(b.client(), zap.NewNop())

	req := callReq(map[string]interface{}{
		"query": "x",
		"limit": float64(500),
	})
	result, err := tool.Handle(authedCtx(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("out-of-range limit should be rejected")
	}
	if b.totalCalls() != 0 {
		t.Errorf("backend received %d calls, want 0", b.totalCalls())
	}
}
