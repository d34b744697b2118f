package sessionstate_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storehub/authcore/internal/identity"
	"github.com/storehub/authcore/internal/sessionstate"
	"github.com/storehub/authcore/internal/verify"
)

// fakeChecker scripts one verification result and counts passes. An
// optional gate blocks the pass until released, so tests can observe the
// checking state and drive concurrent callers deterministically.
type fakeChecker struct {
	result verify.Result
	gate   chan struct{}
	calls  int32
}

func (f *fakeChecker) Verify(ctx context.Context) verify.Result {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return verify.Result{Err: ctx.Err()}
		}
	}
	return f.result
}

func storeUser() *identity.Identity {
	return &identity.Identity{ID: "u-1", Email: "shop@example.com", Role: identity.RoleStore}
}

func TestStore_StartsIdle(t *testing.T) {
	s := sessionstate.New(&fakeChecker{})

	snap := s.Snapshot()

	assert.Equal(t, sessionstate.StatusIdle, snap.Status)
	assert.Nil(t, snap.Identity)
}

func TestEnsureChecked_Authenticated(t *testing.T) {
	checker := &fakeChecker{result: verify.Result{User: storeUser(), IsAuthenticated: true}}
	s := sessionstate.New(checker)

	state := s.EnsureChecked(context.Background())

	assert.Equal(t, sessionstate.StatusAuthenticated, state.Status)
	require.NotNil(t, state.Identity)
	assert.Equal(t, "u-1", state.Identity.ID)
}

func TestEnsureChecked_Anonymous(t *testing.T) {
	checker := &fakeChecker{result: verify.Result{}}
	s := sessionstate.New(checker)

	state := s.EnsureChecked(context.Background())

	assert.Equal(t, sessionstate.StatusAnonymous, state.Status)
}

func TestEnsureChecked_Error(t *testing.T) {
	checker := &fakeChecker{result: verify.Result{Err: identity.ErrUnavailable}}
	s := sessionstate.New(checker)

	state := s.EnsureChecked(context.Background())

	assert.Equal(t, sessionstate.StatusError, state.Status)
}

func TestEnsureChecked_SecondCallIsNoop(t *testing.T) {
	checker := &fakeChecker{result: verify.Result{User: storeUser(), IsAuthenticated: true}}
	s := sessionstate.New(checker)

	s.EnsureChecked(context.Background())
	s.EnsureChecked(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&checker.calls))
}

// TestEnsureChecked_ConcurrentCallersCoalesce mounts many consumers at
// once; exactly one verification pass must run.
func TestEnsureChecked_ConcurrentCallersCoalesce(t *testing.T) {
	gate := make(chan struct{})
	checker := &fakeChecker{
		result: verify.Result{User: storeUser(), IsAuthenticated: true},
		gate:   gate,
	}
	s := sessionstate.New(checker)

	const consumers = 8
	var wg sync.WaitGroup
	states := make([]sessionstate.State, consumers)
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = s.EnsureChecked(context.Background())
		}(i)
	}

	// Let every goroutine reach the store before releasing the pass.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&checker.calls), "concurrent mounts must share one pass")
	for _, state := range states {
		assert.Equal(t, sessionstate.StatusAuthenticated, state.Status)
	}
}

func TestEnsureChecked_CheckingVisibleWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	checker := &fakeChecker{result: verify.Result{}, gate: gate}
	s := sessionstate.New(checker)

	done := make(chan struct{})
	go func() {
		s.EnsureChecked(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.Snapshot().Status == sessionstate.StatusChecking
	}, time.Second, 5*time.Millisecond)

	close(gate)
	<-done
	assert.Equal(t, sessionstate.StatusAnonymous, s.Snapshot().Status)
}

func TestEnsureChecked_CancelledPassDoesNotSettle(t *testing.T) {
	gate := make(chan struct{})
	checker := &fakeChecker{
		result: verify.Result{User: storeUser(), IsAuthenticated: true},
		gate:   gate,
	}
	s := sessionstate.New(checker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.EnsureChecked(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.Snapshot().Status == sessionstate.StatusChecking
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	// The consumer unmounted mid-check; the store must not publish a
	// result nobody asked for.
	assert.Equal(t, sessionstate.StatusIdle, s.Snapshot().Status)
}

func TestLogin_ForcesAuthenticated(t *testing.T) {
	s := sessionstate.New(&fakeChecker{})

	s.Login(storeUser())

	snap := s.Snapshot()
	assert.Equal(t, sessionstate.StatusAuthenticated, snap.Status)
	require.NotNil(t, snap.Identity)
}

func TestLogin_WinsOverInFlightCheck(t *testing.T) {
	gate := make(chan struct{})
	checker := &fakeChecker{result: verify.Result{}, gate: gate}
	s := sessionstate.New(checker)

	done := make(chan struct{})
	go func() {
		s.EnsureChecked(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.Snapshot().Status == sessionstate.StatusChecking
	}, time.Second, 5*time.Millisecond)

	s.Login(storeUser())
	close(gate)
	<-done

	// The stale anonymous result must not clobber the explicit login.
	assert.Equal(t, sessionstate.StatusAuthenticated, s.Snapshot().Status)
}

func TestLogout_Idempotent(t *testing.T) {
	s := sessionstate.New(&fakeChecker{})
	s.Login(storeUser())

	s.Logout()
	first := s.Snapshot()
	s.Logout()
	second := s.Snapshot()

	assert.Equal(t, sessionstate.StatusAnonymous, first.Status)
	assert.Equal(t, sessionstate.StatusAnonymous, second.Status)
	assert.Nil(t, second.Identity)
}

func TestInvalidate_NotifiesSubscribers(t *testing.T) {
	s := sessionstate.New(&fakeChecker{})
	s.Login(storeUser())

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Invalidate()

	select {
	case state := <-ch:
		assert.Equal(t, sessionstate.StatusAnonymous, state.Status)
		assert.Nil(t, state.Identity)
	case <-time.After(time.Second):
		t.Fatal("expected a state notification after Invalidate")
	}
}

func TestSubscribe_CancelStopsNotifications(t *testing.T) {
	s := sessionstate.New(&fakeChecker{})

	ch, cancel := s.Subscribe()
	cancel()

	// Cancelling twice must be safe.
	cancel()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")
}
