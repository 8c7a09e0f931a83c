// Package session tracks per-conversation slots across turns.  The store is
// the only long-lived mutable state in the pipeline; turns of the same
// session are serialized through a per-session lock.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"triage-assistant/internal/nlu"
)

// State holds the slots tracked for one conversation.  A set slot is only
// overwritten by a turn carrying a new value; it is never cleared by
// absence.
type State struct {
	Age             *int
	Severity        string // "", "mild", "moderate", "severe", "worst"
	DurationDays    *float64
	LastSymptomText string
}

// Snapshot is the immutable view of a session handed to the rest of the
// pipeline after a merge.
type Snapshot struct {
	EffectiveText string
	HasAge        bool
	HasSeverity   bool
	HasDuration   bool
}

type entry struct {
	mu      sync.Mutex // guards state; touched is guarded by Store.mu
	state   State
	touched time.Time
}

// DefaultTTL is how long an idle session survives before the sweep drops it.
const DefaultTTL = 12 * time.Hour

// Store is a keyed slot store.  Sessions are created on first reference and
// evicted after TTL of inactivity; the sweep runs inline on access, so the
// store spawns no background work.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewStore constructs a Store.  A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

const sweepInterval = time.Minute

// acquire returns the locked entry for id, creating it if needed.  The
// caller must unlock it.
func (s *Store) acquire(id string) *entry {
	s.mu.Lock()
	if now := s.now(); now.Sub(s.lastSweep) >= sweepInterval {
		s.lastSweep = now
		for k, e := range s.sessions {
			if now.Sub(e.touched) > s.ttl {
				delete(s.sessions, k)
			}
		}
	}
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	// touched is guarded by s.mu, not e.mu: the sweep reads it holding only
	// the store lock.
	e.touched = s.now()
	s.mu.Unlock()
	e.mu.Lock()
	return e
}

// Merge folds a new turn into the session's slots and returns the snapshot
// downstream components consume.  It never fails.
func (s *Store) Merge(id, text string) Snapshot {
	e := s.acquire(id)
	defer e.mu.Unlock()

	merge(&e.state, text)
	return Snapshot{
		EffectiveText: buildEffectiveText(&e.state, text),
		HasAge:        e.state.Age != nil,
		HasSeverity:   e.state.Severity != "",
		HasDuration:   e.state.DurationDays != nil,
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// merge updates slots from one turn.  Parsing is shared with the extractor
// via the nlu package so both sides use the same grammar.
func merge(st *State, text string) {
	if age, ok := nlu.ParseAge(text); ok {
		st.Age = &age
	}
	if sev := nlu.ParseSeverity(text); sev != "" {
		st.Severity = sev
	}
	if days, ok := nlu.ParseDurationDays(text); ok {
		st.DurationDays = &days
	}
	if nlu.HasSymptom(text) {
		st.LastSymptomText = strings.TrimSpace(text)
	}
}

// buildEffectiveText renders known slots as declarative clauses ahead of the
// turn's text.  When the turn carries no symptoms the last known symptom
// text is analyzed instead, so follow-up answers like "2 days" still
// evaluate against the complaint.
func buildEffectiveText(st *State, current string) string {
	var parts []string
	if st.Age != nil {
		parts = append(parts, fmt.Sprintf("%d years old.", *st.Age))
	}
	if st.Severity != "" {
		parts = append(parts, "Severity: "+st.Severity)
	}
	if st.DurationDays != nil {
		parts = append(parts, "Duration: "+strconv.FormatFloat(*st.DurationDays, 'f', -1, 64)+" days.")
	}

	if nlu.HasSymptom(current) {
		parts = append(parts, strings.TrimSpace(current))
	} else if st.LastSymptomText != "" {
		parts = append(parts, st.LastSymptomText)
	}

	if len(parts) == 0 {
		parts = append(parts, strings.TrimSpace(current))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
