package api

import (
	"sync"
	"time"

	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/extractor"
	"github.com/wanderly/campaign-studio/internal/segment"
)

// SessionContext holds one operator session's working state: the selected
// promotion, its audience and the last generated email. Selecting a new
// segment replaces the whole context, including any previous email.
type SessionContext struct {
	Flight      catalog.FlightPromotion
	Segment     segment.UserSegment
	Tiers       map[string]int
	Email       *extractor.ExtractedEmail
	GeneratedAt time.Time
}

// SessionStore is an in-memory session-id -> context map. Sessions are
// ephemeral operator state; a restart losing them is acceptable.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionContext
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]SessionContext)}
}

// Get returns the session context for id, if any.
func (s *SessionStore) Get(id string) (SessionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.sessions[id]
	return sc, ok
}

// Put replaces the context stored under id.
func (s *SessionStore) Put(id string, sc SessionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sc
}
