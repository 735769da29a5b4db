package testutil

import (
	"fmt"
	"sync"
)

// Sequence generates "<prefix>-1", "<prefix>-2", ... and never runs out.
//
// Implements domain.IDGenerator.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequence creates a sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Generate returns the next ID.
func (s *Sequence) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
