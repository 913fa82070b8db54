package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"admin-console/internal/pages"
)

const (
	sessionCookie = "console_session"
	// DefaultMaxSessions bounds the live workspaces when no limit is set.
	DefaultMaxSessions = 1000
)

type session struct {
	ws       *pages.Workspace
	lastSeen time.Time
}

// Sessions maps a browser session id to its page state. Entries idle for
// longer than ttl are dropped on the next lookup; past max entries the
// least recently seen one is evicted.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	build func() *pages.Workspace
	items map[string]*session
	now   func() time.Time
}

func NewSessions(ttl time.Duration, max int, build func() *pages.Workspace) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{ttl: ttl, max: max, build: build, items: map[string]*session{}, now: time.Now}
}

// Get returns the workspace for id, creating one (and a new id) when id is
// empty or unknown.
func (s *Sessions) Get(id string) (string, *pages.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	if sess, ok := s.items[id]; ok && id != "" {
		sess.lastSeen = now
		return id, sess.ws
	}
	for len(s.items) >= s.max {
		s.evictOldest()
	}
	id = uuid.NewString()
	s.items[id] = &session{ws: s.build(), lastSeen: now}
	return id, s.items[id].ws
}

// Drop forgets a session, discarding its page state.
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) prune(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.items, id)
			log.Debug().Str("session", id).Msg("console session expired")
		}
	}
}

func (s *Sessions) evictOldest() {
	var oldest string
	var seen time.Time
	for id, sess := range s.items {
		if oldest == "" || sess.lastSeen.Before(seen) {
			oldest, seen = id, sess.lastSeen
		}
	}
	delete(s.items, oldest)
	log.Debug().Str("session", oldest).Msg("console session evicted")
}
