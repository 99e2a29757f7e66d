package conversation

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAppendTrimsToMaxHistory(t *testing.T) {
	s := NewStore(3, time.Hour)

	for i := 0; i < 10; i++ {
		s.Append(1, RoleUser, fmt.Sprintf("q%d", i))
		s.Append(1, RoleAssistant, fmt.Sprintf("a%d", i))
	}

	h := s.History(1, 0)
	if len(h) != 6 {
		t.Fatalf("expected 6 entries (3 exchanges), got %d", len(h))
	}
	if h[0].Content != "q7" {
		t.Fatalf("oldest kept entry mismatch: got %q want %q", h[0].Content, "q7")
	}
	if h[len(h)-1].Content != "a9" {
		t.Fatalf("newest entry mismatch: got %q", h[len(h)-1].Content)
	}
}

func TestHistoryLimitAndCopy(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append(1, RoleUser, "one")
	s.Append(1, RoleAssistant, "two")
	s.Append(1, RoleUser, "three")

	h := s.History(1, 2)
	if len(h) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h))
	}
	if h[0].Content != "two" || h[1].Content != "three" {
		t.Fatalf("unexpected entries: %#v", h)
	}

	h[0].Content = "mutated"
	if got := s.History(1, 0)[1].Content; got != "two" {
		t.Fatalf("History must return a copy; store saw %q", got)
	}
}

func TestSweepEvictsExpiredConversations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewStore(10, 30*time.Minute, WithClock(clock))

	s.Append(1, RoleUser, "hola")
	s.Append(2, RoleUser, "hello")

	now = now.Add(31 * time.Minute)
	s.Append(2, RoleUser, "still here")

	if got := len(s.History(1, 0)); got != 0 {
		t.Fatalf("user 1 should be evicted, has %d entries", got)
	}
	if got := len(s.History(2, 0)); got != 2 {
		t.Fatalf("user 2 should keep history, has %d entries", got)
	}
	if s.HasRecentActivity(1) {
		t.Fatalf("user 1 should have no recent activity")
	}
	if !s.HasRecentActivity(2) {
		t.Fatalf("user 2 should have recent activity")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append(1, RoleUser, "hola")
	s.Clear(1)
	s.Clear(1)

	if got := len(s.History(1, 0)); got != 0 {
		t.Fatalf("expected empty history after Clear, got %d", got)
	}
	if s.HasRecentActivity(1) {
		t.Fatalf("expected no activity after Clear")
	}
}

func TestContextSummaryTruncatesLongContent(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append(1, RoleUser, strings.Repeat("á", 150))
	s.Append(1, RoleAssistant, "ok")

	summary := s.ContextSummary(1, 10)
	lines := strings.Split(summary, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), summary)
	}
	if !strings.HasPrefix(lines[0], "Usuario: ") || !strings.HasSuffix(lines[0], "...") {
		t.Fatalf("unexpected user line: %q", lines[0])
	}
	if want := "Usuario: " + strings.Repeat("á", 100) + "..."; lines[0] != want {
		t.Fatalf("truncation should count runes, not bytes: %q", lines[0])
	}
	if lines[1] != "Asistente: ok" {
		t.Fatalf("unexpected assistant line: %q", lines[1])
	}
}

func TestStats(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.Append(1, RoleUser, "a")
	s.Append(1, RoleAssistant, "b")
	s.Append(2, RoleUser, "c")

	st := s.Stats()
	if st.ActiveUsers != 2 {
		t.Fatalf("ActiveUsers = %d, want 2", st.ActiveUsers)
	}
	if st.TotalMessages != 3 {
		t.Fatalf("TotalMessages = %d, want 3", st.TotalMessages)
	}
	if st.AvgMessagesPerUser != 1.5 {
		t.Fatalf("AvgMessagesPerUser = %v, want 1.5", st.AvgMessagesPerUser)
	}
}
