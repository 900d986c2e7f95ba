package core

// session.go keeps uploaded files in memory between page views.
//
// A session owns the raw bytes of one upload and the column type directives
// chosen so far. Tables are never cached: each view re-ingests the bytes, so
// no parsed state is shared between requests. Sessions expire after a period
// without access, and the store evicts the least recently used session when
// it is full.

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a snapshot of one upload. Directives is a copy; mutate the
// store, not the snapshot. Data must be treated as read-only.
type Session struct {
	ID         string
	Filename   string
	Format     Format
	Data       []byte
	Directives map[string]TypeDirective
	CreatedAt  time.Time
	LastAccess time.Time
}

type sessionEntry struct {
	Session
}

func (e *sessionEntry) snapshot() Session {
	s := e.Session
	s.Directives = make(map[string]TypeDirective, len(e.Directives))
	for k, v := range e.Directives {
		s.Directives[k] = v
	}
	return s
}

// SessionStore is an in-memory, expiring set of sessions.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionStore creates a store whose sessions expire after ttl without
// access. At most max sessions are kept; zero means unbounded.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create stores a new upload and returns its snapshot.
func (s *SessionStore) Create(filename string, format Format, data []byte) Session {
	now := s.now()
	e := &sessionEntry{Session: Session{
		ID:         uuid.NewString(),
		Filename:   filename,
		Format:     format,
		Data:       data,
		Directives: make(map[string]TypeDirective),
		CreatedAt:  now,
		LastAccess: now,
	}}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 {
		for len(s.sessions) >= s.max {
			s.evictOldestLocked()
		}
	}
	s.sessions[e.ID] = e
	return e.snapshot()
}

func (s *SessionStore) evictOldestLocked() {
	var oldest *sessionEntry
	for _, e := range s.sessions {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
	}
}

// getLocked returns a live session, dropping it when expired.
func (s *SessionStore) getLocked(id string, now time.Time) (*sessionEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if s.ttl > 0 && now.Sub(e.LastAccess) > s.ttl {
		delete(s.sessions, id)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// Get returns a snapshot of the session and refreshes its expiry.
func (s *SessionStore) Get(id string) (Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getLocked(id, now)
	if err != nil {
		return Session{}, err
	}
	e.LastAccess = now
	return e.snapshot(), nil
}

// SetDirectives merges directives into the session. NoChange removes a
// column's directive.
func (s *SessionStore) SetDirectives(id string, directives map[string]TypeDirective) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getLocked(id, now)
	if err != nil {
		return err
	}
	for col, d := range directives {
		if d == NoChange {
			delete(e.Directives, col)
			continue
		}
		e.Directives[col] = d
	}
	e.LastAccess = now
	return nil
}

// SetDirective sets the directive for one column.
func (s *SessionStore) SetDirective(id, column string, d TypeDirective) error {
	return s.SetDirectives(id, map[string]TypeDirective{column: d})
}

// Delete removes a session. Deleting an unknown session is a no-op.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.LastAccess) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
