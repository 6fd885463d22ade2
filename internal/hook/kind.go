package hook

import (
	"fmt"
	"strings"
)

// Kind identifies one of the eight recognized lifecycle moments.
type Kind string

const (
	KindSessionStart     Kind = "session_start"
	KindUserPromptSubmit Kind = "user_prompt_submit"
	KindPreToolUse       Kind = "pre_tool_use"
	KindPostToolUse      Kind = "post_tool_use"
	KindNotification     Kind = "notification"
	KindStop             Kind = "stop"
	KindSubagentStop     Kind = "subagent_stop"
	KindPreCompact       Kind = "pre_compact"
)

// Kinds lists every recognized kind in lifecycle order.
var Kinds = []Kind{
	KindSessionStart,
	KindUserPromptSubmit,
	KindPreToolUse,
	KindPostToolUse,
	KindNotification,
	KindStop,
	KindSubagentStop,
	KindPreCompact,
}

// ParseKind resolves an event-kind argument. The host emits CamelCase names
// (PreToolUse) while the wire format uses snake_case; both are accepted,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	normalized := normalizeKind(s)
	for _, k := range Kinds {
		if normalizeKind(string(k)) == normalized {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized event kind %q", ErrValidation, s)
}

func normalizeKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// ToolEvent reports whether the kind carries a tool payload worth
// classifying.
func (k Kind) ToolEvent() bool {
	return k == KindPreToolUse || k == KindPostToolUse
}
