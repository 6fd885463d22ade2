package hook

import (
	"errors"
	"testing"
)

func TestParseKindSpellings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Kind
	}{
		{"pre_tool_use", KindPreToolUse},
		{"PreToolUse", KindPreToolUse},
		{"POST_TOOL_USE", KindPostToolUse},
		{"SessionStart", KindSessionStart},
		{"user_prompt_submit", KindUserPromptSubmit},
		{"UserPromptSubmit", KindUserPromptSubmit},
		{"notification", KindNotification},
		{"Stop", KindStop},
		{"SubagentStop", KindSubagentStop},
		{"pre-compact", KindPreCompact},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "startup", "tool_use", "pre_tool"} {
		if _, err := ParseKind(in); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseKind(%q): expected validation error, got %v", in, err)
		}
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ErrValidation, ExitValidation},
		{ErrPublish, ExitPublish},
		{ErrPayloadRead, ExitPayload},
		{ErrConfiguration, ExitConfiguration},
		{errors.New("something else"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
