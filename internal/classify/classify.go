// Package classify derives a human-meaningful tool label from heterogeneous
// hook payloads. Payloads are not schema-enforced, so every branch degrades
// to a fallback rather than failing.
package classify

import (
	"strings"
)

// EventKind narrows the hook lifecycle to what classification cares about.
type EventKind int

const (
	KindOther EventKind = iota
	KindPreToolUse
	KindPostToolUse
)

// Input is the transient view of one event handed to Classify.
type Input struct {
	Kind         EventKind
	DeclaredName string
	Fields       map[string]interface{}
}

// Result carries the derived label. For MCP-served tools the server and tool
// halves of the compound name are exposed alongside the composed label.
type Result struct {
	Label     string
	SubLabel  string
	MCPServer string
	MCPTool   string
}

// FallbackLabel is returned when nothing about the payload is recognizable.
const FallbackLabel = "Tool"

const mcpPrefix = "mcp__"

// fieldRule maps payload field presence to a label. Rules are evaluated in
// order and the first match wins; the ordering is a correctness requirement
// (a payload carrying both file_path and content is a write, not a read).
type fieldRule struct {
	match func(fields map[string]interface{}) bool
	label string
}

var fieldRules = []fieldRule{
	{hasAll("command"), "Bash"},
	{hasAll("file_path", "content"), "Write"},
	{hasAll("file_path", "old_string"), "Edit"},
	{hasAll("file_path"), "Read"},
	{hasAll("pattern"), "Grep"},
	{hasAll("path"), "LS"},
	{hasAll("url"), "WebFetch"},
	{hasAll("query"), "WebSearch"},
	{hasAll("description"), "Task"},
	{hasAll("todos"), "TodoWrite"},
}

// Classify resolves the best-guess label for the event. Pure function: the
// same input always produces the same result, and the label is never empty.
func Classify(in Input) Result {
	if server, tool, ok := splitMCPName(in.DeclaredName); ok {
		return Result{
			Label:     "MCP(" + server + "/" + tool + ")",
			MCPServer: server,
			MCPTool:   tool,
		}
	}

	if declared := strings.TrimSpace(in.DeclaredName); declared != "" && !isSentinel(declared) {
		// Explicit data beats inference.
		return Result{Label: declared}
	}

	for _, rule := range fieldRules {
		if rule.match(in.Fields) {
			res := Result{Label: rule.label}
			if rule.label == "Bash" {
				res.SubLabel = commandToken(in.Fields["command"])
			}
			return res
		}
	}

	if in.Kind == KindPostToolUse {
		if label := classifyByExecution(in.Fields); label != "" {
			return Result{Label: label}
		}
	}

	return Result{Label: FallbackLabel}
}

// splitMCPName recognizes the compound mcp__<server>__<tool> form. Tool names
// may themselves contain underscores, so only the first two separators are
// structural.
func splitMCPName(name string) (server, tool string, ok bool) {
	if !strings.HasPrefix(name, mcpPrefix) {
		return "", "", false
	}
	rest := name[len(mcpPrefix):]
	server, tool, found := strings.Cut(rest, "__")
	if !found || server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}

// isSentinel reports whether a declared name is a placeholder that must be
// treated as absent.
func isSentinel(name string) bool {
	switch strings.ToLower(name) {
	case "", "unknown", "tool":
		return true
	}
	return false
}

// commandToken extracts the first whitespace-delimited token of a command
// string, e.g. "git" from "git status".
func commandToken(v interface{}) string {
	cmd, _ := v.(string)
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// classifyByExecution is the post-tool-use secondary heuristic: when field
// shapes tell us nothing, execution characteristics still hint at the tool.
func classifyByExecution(fields map[string]interface{}) string {
	outputLen, hasOutput := numericField(fields, "outputLength")
	execMs, hasExec := numericField(fields, "executionTimeMs")

	switch {
	case hasOutput && outputLen > 5000:
		return "Read"
	case hasOutput && hasExec && outputLen > 0 && execMs < 100:
		return "LS"
	case hasExec && execMs > 2000:
		return "Bash"
	}
	return ""
}

func numericField(fields map[string]interface{}, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func hasAll(keys ...string) func(map[string]interface{}) bool {
	return func(fields map[string]interface{}) bool {
		for _, key := range keys {
			if _, ok := fields[key]; !ok {
				return false
			}
		}
		return true
	}
}
