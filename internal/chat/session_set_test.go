package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession(time.Now())
	if s.ID == "" {
		t.Fatalf("expected generated id")
	}
	if s.Title != "New Chat" {
		t.Fatalf("expected default title, got %q", s.Title)
	}
	if len(s.Messages) != 0 {
		t.Fatalf("expected empty history")
	}
	if s.Revision != 1 {
		t.Fatalf("expected initial revision 1, got %d", s.Revision)
	}
}

func TestPrependPutsNewSessionFirst(t *testing.T) {
	a := NewSession(time.Now())
	b := NewSession(time.Now())
	set := Prepend([]domain.Session{a}, b)
	if len(set) != 2 || set[0].ID != b.ID || set[1].ID != a.ID {
		t.Fatalf("expected new session first")
	}
}

func TestRename(t *testing.T) {
	s := NewSession(time.Now())
	set := []domain.Session{s}

	out := Rename(set, s.ID, "  Mi chat  ")
	if out[0].Title != "Mi chat" {
		t.Fatalf("expected trimmed title, got %q", out[0].Title)
	}

	out = Rename(set, s.ID, "   ")
	if out[0].Title != "Untitled Chat" {
		t.Fatalf("expected fallback title, got %q", out[0].Title)
	}

	out = Rename(set, "missing", "x")
	if out[0].Title != s.Title {
		t.Fatalf("expected unknown id to be a no-op")
	}

	if set[0].Title != "New Chat" {
		t.Fatalf("input set mutated")
	}
}

func TestAppendIsMonotonicAndOrdered(t *testing.T) {
	s := NewSession(time.Now())
	set := []domain.Session{s}

	contents := []string{"uno", "dos", "tres"}
	for i, content := range contents {
		var appended bool
		set, appended = Append(set, s.ID, domain.Message{Role: domain.RoleUser, Content: content})
		if !appended {
			t.Fatalf("expected append %d to succeed", i)
		}
		if len(set[0].Messages) != i+1 {
			t.Fatalf("expected exactly one message added per append, got %d", len(set[0].Messages))
		}
	}
	for i, content := range contents {
		if set[0].Messages[i].Content != content {
			t.Fatalf("message %d out of order: %q", i, set[0].Messages[i].Content)
		}
	}

	out, appended := Append(set, "missing", domain.Message{Role: domain.RoleUser, Content: "x"})
	if appended {
		t.Fatalf("expected unknown id append to report false")
	}
	if len(out[0].Messages) != len(contents) {
		t.Fatalf("expected unknown id append to be a no-op")
	}
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	s := NewSession(time.Now())
	set, _ := Append([]domain.Session{s}, s.ID, domain.Message{Role: domain.RoleUser, Content: "uno"})

	// Un segundo append sobre el mismo set no debe tocar el anterior.
	_, _ = Append(set, s.ID, domain.Message{Role: domain.RoleAssistant, Content: "dos"})
	if len(set[0].Messages) != 1 {
		t.Fatalf("input set mutated, got %d messages", len(set[0].Messages))
	}
}

func TestDeleteAndNextActive(t *testing.T) {
	a := NewSession(time.Now())
	b := NewSession(time.Now())
	set := []domain.Session{a, b}

	out, removed := Delete(set, a.ID)
	if !removed || len(out) != 1 || out[0].ID != b.ID {
		t.Fatalf("expected a removed, b kept")
	}
	if NextActive(out) != b.ID {
		t.Fatalf("expected first remaining session active")
	}

	out, removed = Delete(out, b.ID)
	if !removed || len(out) != 0 {
		t.Fatalf("expected empty set")
	}
	if NextActive(out) != "" {
		t.Fatalf("expected no active session")
	}

	_, removed = Delete(out, "missing")
	if removed {
		t.Fatalf("expected unknown delete to report false")
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := DeriveTitle("Hello"); got != "Hello" {
		t.Fatalf("expected short text verbatim, got %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := DeriveTitle(long); got != strings.Repeat("a", 30) {
		t.Fatalf("expected 30 chars, got %d", len(got))
	}
	// El corte es por runas, no por bytes.
	if got := DeriveTitle(strings.Repeat("ñ", 40)); got != strings.Repeat("ñ", 30) {
		t.Fatalf("expected 30 runes, got %q", got)
	}
}
