package core

import (
	"sync"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// Session holds the network a client is currently looking at. Every search
// takes a token from Begin; only the holder of the newest token may Commit,
// so a slow superseded search cannot overwrite a newer result.
type Session struct {
	mu      sync.Mutex
	token   uint64
	current *model.NetworkResult
}

func NewSession() *Session {
	return &Session{}
}

// Begin starts a search and invalidates any still in flight.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	return s.token
}

// Commit stores result if token is still the newest. It reports whether
// the result was accepted.
func (s *Session) Commit(token uint64, result *model.NetworkResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return false
	}
	s.current = result
	return true
}

// Current returns the last committed result, or nil.
func (s *Session) Current() *model.NetworkResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
