package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memexlabs/prometheus/pkg/llm"
)

// SessionTTL is how long a chat session survives without activity before
// the sweeper reclaims it, matching the reference ChatSession.is_expired's
// one-hour window.
const SessionTTL = time.Hour

// Session is one chat conversation's history and bookkeeping. Instance is
// the storage/home instance: for a single-instance chat it's the instance
// named in the URL; for a cross-instance chat it's the manager's Home()
// instance, matching the reference's first_instance assignment.
type Session struct {
	ID            string
	Instance      string
	CrossInstance bool
	History       []llm.Turn
	CreatedAt     time.Time
	LastActive    time.Time
}

// Store holds every live session behind a single mutex, per spec.md §5's
// "chat session table — guarded by a single mutex; reads and writes
// short" — there is deliberately no per-session lock. Shape grounded on
// the teacher's pkg/session manager (mutex-guarded map, uuid ids), extended
// with Instance/CrossInstance/LastActive and tool-call-aware turns the
// teacher's flat message list didn't need.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session named by id if it's live, touching its
// LastActive; otherwise it mints a fresh session bound to instance.
func (s *Store) GetOrCreate(id, instance string, crossInstance bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.LastActive = time.Now()
			return sess
		}
	}

	now := time.Now()
	sess := &Session{
		ID:            uuid.New().String(),
		Instance:      instance,
		CrossInstance: crossInstance,
		CreatedAt:     now,
		LastActive:    now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// AppendTurn appends turn to the session's history, if it still exists.
func (s *Store) AppendTurn(id string, turn llm.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.History = append(sess.History, turn)
		sess.LastActive = time.Now()
	}
}

// History returns a copy of the session's turns, safe to use without
// holding the store's lock.
func (s *Store) History(id string) []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]llm.Turn, len(sess.History))
	copy(out, sess.History)
	return out
}

// Delete removes a session explicitly, e.g. via DELETE
// /{instance}/chat/{session_id}. Reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Sweep removes every session whose LastActive is older than SessionTTL
// as of now, batched under one lock acquisition, and reports how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActive) > SessionTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions, used by tests.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
