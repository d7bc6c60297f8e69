package testfixtures

import "sync"

// Sequence produces deterministic int64 identifiers for tests. The storage
// layer assigns ids itself, so sequences are only needed when tests build
// records directly against stub repositories.
type Sequence struct {
	mu      sync.Mutex
	counter int64
}

// NewSequence constructs a sequence that starts after the supplied value.
func NewSequence(start int64) *Sequence {
	return &Sequence{counter: start}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (s *Sequence) NextFunc() func() int64 {
	if s == nil {
		return func() int64 { return 0 }
	}
	return s.Next
}

// Reset overrides the internal counter, enabling deterministic resets.
func (s *Sequence) Reset(counter int64) {
	s.mu.Lock()
	s.counter = counter
	s.mu.Unlock()
}
