package runtime

import (
	"sync"

	"github.com/samber/lo"

	"chat-relay/contract"
)

type session struct {
	sink     contract.EventSink
	userID   string
	userName string
	joined   bool
}

// Registry tracks live connections: each session id maps to the
// connection's sink plus the identity captured at join time. The
// identity is connection-scoped state, not global; presence itself
// lives in the domain registry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Attach registers a connection's sink. The connection starts
// unidentified; broadcasts reach it from this point on.
func (r *Registry) Attach(sessionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = &session{sink: sink}
}

// Detach forgets a connection entirely. Detaching an unknown session is
// a no-op so teardown stays idempotent.
func (r *Registry) Detach(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Identify records the identity a connection asserted on join. A later
// join on the same session overwrites the previous identity.
func (r *Registry) Identify(sessionID, userID, userName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	s.userID = userID
	s.userName = userName
	s.joined = true
}

// Identity returns the identity captured for a session; ok is false
// while the connection has not joined.
func (r *Registry) Identity(sessionID string) (userID, userName string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sessions[sessionID]
	if !exists || !s.joined {
		return "", "", false
	}
	return s.userID, s.userName, true
}

// Sinks returns the sinks of every attached connection.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(r.sessions, func(_ string, s *session) contract.EventSink {
		return s.sink
	})
}

// SinksExcept returns every sink but the given session's. Used to relay
// chat messages without a local echo to the sender.
func (r *Registry) SinksExcept(sessionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(lo.OmitByKeys(r.sessions, []string{sessionID}),
		func(_ string, s *session) contract.EventSink { return s.sink })
}

// Count returns the number of attached connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
