package transform

import "sync"

// Scratchpad is a process-lifetime-limited mutable mapping from string to
// JSON value, created fresh per cryptogram evaluation. Set writes, Get
// reads, there is no delete. It is guarded by a mutex: sub-expressions are
// not expected to run concurrently today, but the lock keeps the contract
// robust if a future caller nests evaluations.
type Scratchpad struct {
	mu   sync.Mutex
	vars map[string]any
}

// NewScratchpad returns an empty Scratchpad, ready for one Evaluate call.
func NewScratchpad() *Scratchpad {
	return &Scratchpad{vars: make(map[string]any)}
}

// Set stores value under name.
func (s *Scratchpad) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Get retrieves the value stored under name.
func (s *Scratchpad) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}
