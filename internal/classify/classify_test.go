package classify

import (
	"strings"
	"testing"
)

func TestClassifyFieldCascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields map[string]interface{}
		want   string
	}{
		{"command", map[string]interface{}{"command": "ls -la"}, "Bash"},
		{"write beats read", map[string]interface{}{"file_path": "/tmp/a", "content": "x"}, "Write"},
		{"edit beats read", map[string]interface{}{"file_path": "/tmp/a", "old_string": "x"}, "Edit"},
		{"file_path alone", map[string]interface{}{"file_path": "/tmp/a"}, "Read"},
		{"pattern", map[string]interface{}{"pattern": "func "}, "Grep"},
		{"path", map[string]interface{}{"path": "/tmp"}, "LS"},
		{"url", map[string]interface{}{"url": "https://example.com"}, "WebFetch"},
		{"query", map[string]interface{}{"query": "golang file lock"}, "WebSearch"},
		{"description", map[string]interface{}{"description": "refactor the parser"}, "Task"},
		{"todos", map[string]interface{}{"todos": []interface{}{}}, "TodoWrite"},
		{"empty fields", map[string]interface{}{}, FallbackLabel},
		{"nil fields", nil, FallbackLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(Input{Kind: KindPreToolUse, Fields: tt.fields})
			if got.Label != tt.want {
				t.Fatalf("expected label %q, got %q", tt.want, got.Label)
			}
		})
	}
}

func TestClassifyCommandSubLabel(t *testing.T) {
	t.Parallel()

	got := Classify(Input{
		Kind:   KindPreToolUse,
		Fields: map[string]interface{}{"command": "git status"},
	})
	if got.Label != "Bash" {
		t.Fatalf("expected Bash, got %q", got.Label)
	}
	if got.SubLabel != "git" {
		t.Fatalf("expected sub-label git, got %q", got.SubLabel)
	}
}

func TestClassifyMCPName(t *testing.T) {
	t.Parallel()

	got := Classify(Input{DeclaredName: "mcp__github__search_issues"})
	if !strings.Contains(got.Label, "github") || !strings.Contains(got.Label, "search_issues") {
		t.Fatalf("expected label to carry server and tool, got %q", got.Label)
	}
	if got.MCPServer != "github" {
		t.Fatalf("expected server github, got %q", got.MCPServer)
	}
	if got.MCPTool != "search_issues" {
		t.Fatalf("expected tool search_issues, got %q", got.MCPTool)
	}
}

func TestClassifyMCPMalformedName(t *testing.T) {
	t.Parallel()

	// No tool half: not an MCP name, and since it is not a sentinel either,
	// it passes through verbatim.
	got := Classify(Input{DeclaredName: "mcp__github"})
	if got.Label != "mcp__github" {
		t.Fatalf("expected verbatim pass-through, got %q", got.Label)
	}
	if got.MCPServer != "" || got.MCPTool != "" {
		t.Fatalf("expected no MCP metadata, got %+v", got)
	}
}

func TestClassifyDeclaredNameVerbatim(t *testing.T) {
	t.Parallel()

	// Explicit data beats inference even when fields suggest another tool.
	got := Classify(Input{
		DeclaredName: "Bash",
		Fields:       map[string]interface{}{"file_path": "/tmp/a", "content": "x"},
	})
	if got.Label != "Bash" {
		t.Fatalf("expected declared name verbatim, got %q", got.Label)
	}
}

func TestClassifySentinelsTriggerInference(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []string{"", "unknown", "Unknown", "UNKNOWN", "Tool", "tool"} {
		got := Classify(Input{
			DeclaredName: sentinel,
			Fields:       map[string]interface{}{"file_path": "/tmp/a"},
		})
		if got.Label != "Read" {
			t.Fatalf("sentinel %q: expected inference to Read, got %q", sentinel, got.Label)
		}
	}
}

func TestClassifyExecutionHeuristics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   EventKind
		fields map[string]interface{}
		want   string
	}{
		{
			"large output reads",
			KindPostToolUse,
			map[string]interface{}{"outputLength": float64(20000)},
			"Read",
		},
		{
			"fast with output lists",
			KindPostToolUse,
			map[string]interface{}{"outputLength": float64(120), "executionTimeMs": float64(40)},
			"LS",
		},
		{
			"slow executes",
			KindPostToolUse,
			map[string]interface{}{"executionTimeMs": float64(5000)},
			"Bash",
		},
		{
			"heuristics only apply post tool use",
			KindPreToolUse,
			map[string]interface{}{"outputLength": float64(20000)},
			FallbackLabel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(Input{Kind: tt.kind, Fields: tt.fields})
			if got.Label != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Label)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	t.Parallel()

	in := Input{
		Kind:         KindPostToolUse,
		DeclaredName: "unknown",
		Fields:       map[string]interface{}{"command": "git push origin main"},
	}
	first := Classify(in)
	for i := 0; i < 10; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, got)
		}
	}
}

func TestClassifyNeverEmpty(t *testing.T) {
	t.Parallel()

	inputs := []Input{
		{},
		{Kind: KindPostToolUse},
		{DeclaredName: "   "},
		{Fields: map[string]interface{}{"command": ""}},
	}
	for _, in := range inputs {
		if got := Classify(in); got.Label == "" {
			t.Fatalf("expected non-empty label for %+v", in)
		}
	}
}
