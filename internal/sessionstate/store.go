// Package sessionstate holds the single source of truth for "who is the
// current user" on a storefront client. Every protected view reads from
// one Store; nothing outside this package mutates its state directly.
package sessionstate

import (
	"context"
	"sync"

	"github.com/storehub/authcore/internal/identity"
	"github.com/storehub/authcore/internal/verify"
)

// Status is the session lifecycle state.
type Status string

const (
	// StatusIdle is the initial state before any check has run.
	StatusIdle Status = "idle"

	// StatusChecking means a verification pass is in flight.
	StatusChecking Status = "checking"

	// StatusAuthenticated means a verified identity is present.
	StatusAuthenticated Status = "authenticated"

	// StatusAnonymous means the session is known to have no identity.
	StatusAnonymous Status = "anonymous"

	// StatusError means verification exhausted its retries.
	StatusError Status = "error"
)

// State is a point-in-time snapshot of the store. Consumers must treat
// idle and checking as "do not render role-specific content yet."
type State struct {
	Identity *identity.Identity
	Status   Status
}

// Checker runs one resilient identity verification pass.
type Checker interface {
	Verify(ctx context.Context) verify.Result
}

// Store is an injectable session-state container. Construct one per
// process (or per test) with New; the zero value is not usable.
type Store struct {
	checker Checker

	mu       sync.Mutex
	state    State
	inflight chan struct{} // non-nil while a checking pass is running

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// New creates a Store in the idle state.
func New(checker Checker) *Store {
	return &Store{
		checker: checker,
		state:   State{Status: StatusIdle},
		subs:    make(map[int]chan State),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers for state-change notifications. The returned cancel
// must be called when the consumer unmounts. Slow consumers miss
// intermediate states rather than blocking the store.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// EnsureChecked triggers the initial verification pass. Concurrent callers
// coalesce onto a single in-flight pass; callers whose context ends before
// the pass settles simply stop waiting — the store itself is only mutated
// by the pass that runs. Subsequent calls after the store has settled are
// no-ops.
func (s *Store) EnsureChecked(ctx context.Context) State {
	s.mu.Lock()
	switch s.state.Status {
	case StatusIdle:
		// This caller runs the pass.
	case StatusChecking:
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return s.Snapshot()
	default:
		defer s.mu.Unlock()
		return s.state
	}

	done := make(chan struct{})
	s.inflight = done
	s.state = State{Status: StatusChecking}
	s.mu.Unlock()
	s.notify()

	res := s.checker.Verify(ctx)

	s.mu.Lock()
	// A Login/Logout/Invalidate that landed while the pass was in flight
	// wins; a stale result must not overwrite it.
	if s.state.Status == StatusChecking {
		if ctx.Err() != nil {
			s.state = State{Status: StatusIdle}
		} else {
			s.state = stateFromResult(res)
		}
	}
	s.inflight = nil
	s.mu.Unlock()

	close(done)
	s.notify()
	return s.Snapshot()
}

// Login forces the authenticated state after the provider has issued a
// session for ident.
func (s *Store) Login(ident *identity.Identity) {
	s.mu.Lock()
	s.state = State{Identity: ident, Status: StatusAuthenticated}
	s.mu.Unlock()
	s.notify()
}

// Logout clears the cached identity. Idempotent: logging out of an
// anonymous store is a no-op that leaves it anonymous.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state = State{Status: StatusAnonymous}
	s.mu.Unlock()
	s.notify()
}

// Invalidate records a server-observed session invalidation (a 401 from
// any API call). The store drops to anonymous immediately so views react
// without a manual refresh.
func (s *Store) Invalidate() {
	s.Logout()
}

func stateFromResult(res verify.Result) State {
	switch {
	case res.Err != nil:
		return State{Status: StatusError}
	case res.IsAuthenticated:
		return State{Identity: res.User, Status: StatusAuthenticated}
	default:
		return State{Status: StatusAnonymous}
	}
}

// notify pushes the latest state to every subscriber, dropping updates
// for subscribers whose buffer is full.
func (s *Store) notify() {
	state := s.Snapshot()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
			// Drain the stale value and replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
