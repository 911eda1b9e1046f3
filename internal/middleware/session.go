package middleware

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions holds the tokens issued at login. Tokens live until logout or restart.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]struct{})}
}

// Create issues a new random session token.
func (s *Sessions) Create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return token
}

func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
