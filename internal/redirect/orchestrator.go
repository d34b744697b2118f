// Package redirect sequences the hand-off from a successful login to the
// user's landing page. A client-side navigation issued immediately after
// the login response can race the session cookie write, so the
// orchestrator waits for the cookie to settle, navigates, and arms a
// forced-reload fallback in case the navigation is silently dropped.
package redirect

import (
	"log/slog"
	"sync"
	"time"
)

// Phase is a named state of the orchestrator.
type Phase string

const (
	// PhaseVerifying is the initial cookie-settling wait; the UI shows a
	// "verifying" status.
	PhaseVerifying Phase = "verifying"

	// PhaseRedirecting means the navigation has been issued and the
	// fallback timer is armed.
	PhaseRedirecting Phase = "redirecting"

	// PhaseFallback means the fallback fired and a hard reload was forced.
	PhaseFallback Phase = "fallback"

	// PhaseDone means navigation was confirmed.
	PhaseDone Phase = "done"

	// PhaseStopped means the view unmounted; no further side effects occur.
	PhaseStopped Phase = "stopped"
)

// Navigator performs the actual route changes.
type Navigator interface {
	// Navigate requests a client-side route change.
	Navigate(route string)

	// ForceReload performs a hard page load to route, the
	// guaranteed-progress fallback.
	ForceReload(route string)
}

// Scheduler schedules a single callback and returns a cancel function.
// The timer implementation backs production; tests drive the orchestrator
// with a manual scheduler.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

const (
	// DefaultSettleDelay is how long the orchestrator waits for the
	// session cookie to become observable before navigating.
	DefaultSettleDelay = 1 * time.Second

	// DefaultFallbackDelay is how long after navigating the orchestrator
	// waits for confirmation before forcing a hard reload.
	DefaultFallbackDelay = 1 * time.Second
)

// Orchestrator is the post-login redirect state machine. One instance
// serves one login; it is not reusable after Stop or completion.
type Orchestrator struct {
	nav      Navigator
	sched    Scheduler
	settle   time.Duration
	fallback time.Duration

	mu          sync.Mutex
	phase       Phase
	target      string
	cancelTimer func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSettleDelay overrides the cookie-settling wait.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.settle = d }
}

// WithFallbackDelay overrides the forced-reload timer.
func WithFallbackDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.fallback = d }
}

// WithScheduler replaces the timer scheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) { o.sched = s }
}

// New creates an Orchestrator that navigates via nav.
func New(nav Navigator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		nav:      nav,
		sched:    TimerScheduler{},
		settle:   DefaultSettleDelay,
		fallback: DefaultFallbackDelay,
		phase:    PhaseVerifying,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Start enters the verifying phase for the given target route. The user
// is never left on the verifying screen indefinitely: time to a terminal
// phase is bounded by the settle delay plus the fallback delay.
func (o *Orchestrator) Start(target string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseVerifying || o.cancelTimer != nil {
		return
	}

	o.target = target
	o.cancelTimer = o.sched.After(o.settle, o.navigate)
}

// navigate fires when the settle timer elapses.
func (o *Orchestrator) navigate() {
	o.mu.Lock()
	if o.phase != PhaseVerifying {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseRedirecting
	target := o.target
	o.cancelTimer = o.sched.After(o.fallback, o.forceReload)
	o.mu.Unlock()

	o.nav.Navigate(target)
}

// forceReload fires when the fallback timer elapses without Confirm.
func (o *Orchestrator) forceReload() {
	o.mu.Lock()
	if o.phase != PhaseRedirecting {
		o.mu.Unlock()
		return
	}
	o.phase = PhaseFallback
	target := o.target
	o.cancelTimer = nil
	o.mu.Unlock()

	slog.Warn("client navigation did not land, forcing page load", "target", target)
	o.nav.ForceReload(target)
}

// Confirm records that the route change landed, disarming the fallback.
func (o *Orchestrator) Confirm() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseRedirecting {
		return
	}
	o.phase = PhaseDone
	if o.cancelTimer != nil {
		o.cancelTimer()
		o.cancelTimer = nil
	}
}

// Stop cancels any pending timer. Called on view unmount; afterwards the
// orchestrator performs no navigation and produces no side effects.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase == PhaseDone || o.phase == PhaseStopped {
		return
	}
	o.phase = PhaseStopped
	if o.cancelTimer != nil {
		o.cancelTimer()
		o.cancelTimer = nil
	}
}
