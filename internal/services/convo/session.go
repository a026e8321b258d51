// File: internal/services/convo/session.go
package convo

import (
	"context"
	"sync"

	"personachat/internal/domain"
	"personachat/internal/services/geo"
	"personachat/internal/services/tools"
)

// session is one user's in-memory conversation state. All transcript writers
// (the main turn sequence and detached side flows) serialize on turnMu; the
// sending flag rejects concurrent sends instead of queueing them.
type session struct {
	userID uint

	mu      sync.Mutex // guards sending
	sending bool

	turnMu   sync.Mutex // single-writer lock over profile, chats, location
	profile  *domain.UserProfile
	chats    map[string]*domain.Chat
	location *geo.Location
}

// env exposes the session's last known location as tool defaults.
func (s *session) env() tools.Env {
	if s.location == nil {
		return tools.Env{}
	}
	return tools.Env{City: s.location.City, Timezone: s.location.Timezone}
}

// tryAcquire sets the busy flag, reporting false when a turn is in flight.
func (s *session) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending {
		return false
	}
	s.sending = true
	return true
}

func (s *session) release() {
	s.mu.Lock()
	s.sending = false
	s.mu.Unlock()
}

// getSession returns the live session for a user, loading profile and chats
// from the state store on first touch.
func (c *Controller) getSession(ctx context.Context, userID uint) (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess, ok := c.sessions[userID]; ok {
		return sess, nil
	}

	profile, err := c.store.LoadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	chats, err := c.store.LoadChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess := &session{userID: userID, profile: profile, chats: chats}
	c.sessions[userID] = sess
	return sess, nil
}
