package scheduling

import (
	"context"
	"sync"
	"time"
)

// SessionContext is the context bag a dialog session accumulates while
// walking the scheduling flow. It is JSON-serializable so external
// session stores can persist it as a blob.
type SessionContext struct {
	GoalID      int32          `json:"goalId,omitempty"`
	Deadline    time.Time      `json:"deadline,omitempty"`
	TimePrefs   []TimeBucket   `json:"timePrefs,omitempty"`
	DayPrefs    []time.Weekday `json:"dayPrefs,omitempty"`
	Slots       []Slot         `json:"slots,omitempty"`
	Plan        []PlanEntry    `json:"plan,omitempty"`
	Feasibility *Feasibility   `json:"feasibility,omitempty"`
}

// Session is one user's dialog state with its context and expiry.
type Session struct {
	UserID    string
	State     DialogState
	Context   SessionContext
	ExpiresAt time.Time
}

// Expired reports whether the session's context window has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStore holds per-user dialog sessions. Implementations enforce
// TTL on write; readers also treat expired sessions as idle so a stale
// store entry can never resurrect an old conversation.
type SessionStore interface {
	// Get returns the user's session, or nil when none exists.
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID string) error
}

// MemorySessionStore is an in-process SessionStore with lazy expiry and
// a periodic sweep. Suitable for a single-instance deployment; swap in
// an external store behind the same interface for anything bigger.
type MemorySessionStore struct {
	sessions map[string]*Session
	done     chan struct{}
	mu       sync.RWMutex
	once     sync.Once
}

func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go s.sweep(10 * time.Minute)
	return s
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if session.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, userID)
		s.mu.Unlock()
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Put(_ context.Context, session *Session) error {
	copied := *session
	s.mu.Lock()
	s.sessions[session.UserID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Close stops the background sweep.
func (s *MemorySessionStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemorySessionStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for userID, session := range s.sessions {
				if session.Expired(now) {
					delete(s.sessions, userID)
				}
			}
			s.mu.Unlock()
		}
	}
}
