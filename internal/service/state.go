package service

import "sync"

// State is where a snapshot is in its fetch lifecycle.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// snapshot guards one fetched value. Every fetch takes a sequence number
// from begin; a result is applied only if no later fetch has already been
// applied and no reset happened after the fetch began. The epoch counts
// resets, so work that read the session before a reset cannot start a fetch
// after it.
type snapshot[T any] struct {
	mu      sync.RWMutex
	value   T
	clone   func(T) T
	state   State
	err     error
	started uint64
	floor   uint64
	epoch   uint64
}

func newSnapshot[T any](clone func(T) T) *snapshot[T] {
	return &snapshot[T]{clone: clone}
}

// generation returns the current reset epoch.
func (s *snapshot[T]) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// begin starts a fetch on behalf of a caller that observed epoch. It refuses
// when a reset happened since.
func (s *snapshot[T]) begin(epoch uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return 0, false
	}
	s.started++
	s.state = StateLoading
	return s.started, true
}

// commit stores v if seq is still current and reports whether it did.
func (s *snapshot[T]) commit(seq uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.floor {
		return false
	}
	s.floor = seq
	s.value = v
	if seq == s.started {
		s.state = StateReady
		s.err = nil
	}
	return true
}

// fail records err for the fetch seq. The value is left untouched.
func (s *snapshot[T]) fail(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.floor {
		return
	}
	s.err = err
	if seq == s.started {
		s.state = StateError
	}
}

// failMutation records a rejected mutation started in epoch. The value is
// left untouched.
func (s *snapshot[T]) failMutation(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.err = err
	s.state = StateError
}

func (s *snapshot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.state = StateEmpty
	s.err = nil
	s.floor = s.started
	s.epoch++
}

func (s *snapshot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.value)
}

func (s *snapshot[T]) status() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.err
}
