// Package session keeps per-client state: one app controller, one chat
// conversation, and at most one live voice call.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/app"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/voice"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// Session is one client's server-side state. The deck lives inside the
// app controller; chat and voice are independent side-channels.
type Session struct {
	ID   string
	App  *app.Controller
	Chat *chat.Conversation

	mu    sync.Mutex
	voice *voice.Session
}

// SwapVoice installs the new live call and returns the previous one so
// the caller can tear it down first. Audio capture is a singleton per
// session; two concurrent live calls are never allowed.
func (s *Session) SwapVoice(v *voice.Session) (previous *voice.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.voice
	s.voice = v
	return previous
}

// DetachVoice clears the slot if v is still the active call.
func (s *Session) DetachVoice(v *voice.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == v {
		s.voice = nil
	}
}

// Close tears down everything the session owns.
func (s *Session) Close() {
	s.mu.Lock()
	v := s.voice
	s.voice = nil
	s.mu.Unlock()

	if v != nil {
		v.Close("session closed")
	}
	s.App.Close()
}

// Registry is the in-memory session store.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newApp   func() *app.Controller
}

// NewRegistry creates a store; newApp builds the controller for each new
// session.
func NewRegistry(newApp func() *app.Controller) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		newApp:   newApp,
	}
}

// Create registers a fresh Idle session.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:   uuid.New().String(),
		App:  r.newApp(),
		Chat: chat.NewConversation(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks a session up by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "session not found")
	}
	return s, nil
}

// Delete closes and removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "session not found")
	}
	s.Close()
	return nil
}

// CloseAll tears every session down. Shutdown path.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
