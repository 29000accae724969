package bot

import (
	"sync"
	"time"
)

// Sessions tracks which users are in modify mode. A session ends when the
// user cancels it, when it is used, or when its TTL passes.
type Sessions struct {
	now     func() time.Time
	expires map[int64]time.Time
	ttl     time.Duration
	mu      sync.Mutex
}

// NewSessions creates a session table whose entries live for ttl.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		now:     time.Now,
		expires: make(map[int64]time.Time),
		ttl:     ttl,
	}
}

// Start opens or renews the session of userID.
func (s *Sessions) Start(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[userID] = s.now().Add(s.ttl)
}

// Active reports whether userID has an unexpired session. Expired sessions
// are dropped.
func (s *Sessions) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[userID]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.expires, userID)
		return false
	}
	return true
}

// End closes the session of userID and reports whether one was active.
func (s *Sessions) End(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[userID]
	delete(s.expires, userID)
	return ok && s.now().Before(exp)
}
