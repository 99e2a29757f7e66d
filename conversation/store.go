// Package conversation keeps a bounded, time-expiring message history per
// user. State is in-memory only; a restart loses all history by design.
package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultMaxHistory = 10
	DefaultTimeout    = 30 * time.Minute
)

type Entry struct {
	Role      string
	Content   string
	Timestamp time.Time
}

type Stats struct {
	ActiveUsers        int
	TotalMessages      int
	AvgMessagesPerUser float64
}

type Option func(*Store)

// WithClock replaces the time source, for eviction tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is safe for concurrent use. A single mutex covers the whole map;
// the eviction sweep is O(active users), which is fine at bot scale but
// would need sharding if this ever served more than a few thousand users.
type Store struct {
	mu           sync.Mutex
	histories    map[int64][]Entry
	lastActivity map[int64]time.Time
	maxHistory   int
	timeout      time.Duration
	now          func() time.Time
}

func NewStore(maxHistory int, timeout time.Duration, opts ...Option) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Store{
		histories:    make(map[int64][]Entry),
		lastActivity: make(map[int64]time.Time),
		maxHistory:   maxHistory,
		timeout:      timeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Append sweeps expired conversations, records the entry and trims the
// user's history to the most recent maxHistory exchanges (2x entries).
func (s *Store) Append(userID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	s.histories[userID] = append(s.histories[userID], Entry{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if max := s.maxHistory * 2; len(s.histories[userID]) > max {
		trimmed := s.histories[userID][len(s.histories[userID])-max:]
		s.histories[userID] = append([]Entry(nil), trimmed...)
	}
	s.lastActivity[userID] = now
}

// History returns the stored entries oldest-first. limit <= 0 returns all.
func (s *Store) History(userID int64, limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.histories[userID]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]Entry, len(h))
	copy(out, h)
	return out
}

// Clear drops the user's history and activity record. Idempotent.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, userID)
	delete(s.lastActivity, userID)
}

func (s *Store) HasRecentActivity(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastActivity[userID]
	if !ok {
		return false
	}
	return s.now().Sub(last) < s.timeout
}

// ContextSummary renders a compact "Usuario:/Asistente:" preview of the last
// lastN entries, mainly for logging.
func (s *Store) ContextSummary(userID int64, lastN int) string {
	entries := s.History(userID, lastN)
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		who := "Usuario"
		if e.Role == RoleAssistant {
			who = "Asistente"
		}
		content := e.Content
		if len([]rune(content)) > 100 {
			content = string([]rune(content)[:100]) + "..."
		}
		parts = append(parts, fmt.Sprintf("%s: %s", who, content))
	}
	return strings.Join(parts, "\n")
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, h := range s.histories {
		total += len(h)
	}
	st := Stats{
		ActiveUsers:   len(s.histories),
		TotalMessages: total,
	}
	if st.ActiveUsers > 0 {
		st.AvgMessagesPerUser = float64(total) / float64(st.ActiveUsers)
	}
	return st
}

func (s *Store) sweepLocked(now time.Time) {
	for userID, last := range s.lastActivity {
		if now.Sub(last) > s.timeout {
			delete(s.histories, userID)
			delete(s.lastActivity, userID)
		}
	}
}
