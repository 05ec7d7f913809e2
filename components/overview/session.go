package overview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the page session id.
const SessionCookie = "overview_session"

// ControllerFactory builds the controller of a new page session.
type ControllerFactory func(sessionID string) *Controller

// SessionStore keeps one Controller per page session. Sessions idle for
// longer than the TTL are dropped by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	factory  ControllerFactory
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*session
}

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// NewSessionStore creates a store. A non-positive ttl keeps sessions forever.
func NewSessionStore(factory ControllerFactory, ttl time.Duration) *SessionStore {
	return &SessionStore{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Get returns the controller for id, creating the session when id is empty,
// malformed or unknown. created reports whether a new session was started;
// callers run Init on new sessions.
func (s *SessionStore) Get(id string) (ctrl *Controller, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.lastSeen = s.now()
			return sess.controller, false
		}
	}
	if id == "" {
		id = NewSessionID()
	}
	sess := &session{controller: s.factory(id), lastSeen: s.now()}
	s.sessions[id] = sess
	return sess.controller, true
}

// Lookup returns an existing session without creating one.
func (s *SessionStore) Lookup(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.controller, true
}

// Sweep drops idle sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
