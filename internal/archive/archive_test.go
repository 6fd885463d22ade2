package archive

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/krsfer/claude-hooks-sub000/internal/envelope"
)

func TestArchiveAppendAndList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "archive.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	for seq := int64(1); seq <= 3; seq++ {
		env := envelope.New(envelope.Params{
			EventKind:  "pre_tool_use",
			SessionKey: "sess-1",
			Sequence:   seq,
			Payload:    json.RawMessage(`{"command":"ls"}`),
			ToolName:   "Bash(ls)",
		})
		encoded, err := env.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if err := s.Append(env, encoded); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := s.ListSession("sess-1", 2)
	if err != nil {
		t.Fatalf("ListSession: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Sequence != 3 {
		t.Fatalf("expected newest first, got sequence %d", entries[0].Sequence)
	}
	if entries[0].ToolName != "Bash(ls)" {
		t.Fatalf("unexpected tool name %q", entries[0].ToolName)
	}

	other, err := s.ListSession("sess-2", 0)
	if err != nil {
		t.Fatalf("ListSession: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no entries for other session, got %d", len(other))
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "archive.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
}

func TestAppendRequiresID(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.Append(envelope.Envelope{}, []byte("{}")); err == nil {
		t.Fatal("expected error for envelope without id")
	}
}
