// Package verify wraps the identity provider's current-identity check
// with a bounded retry policy, so page mounts tolerate transient provider
// hiccups without every caller reimplementing backoff.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storehub/authcore/internal/identity"
)

const (
	// DefaultMaxRetries bounds the number of provider calls per Verify.
	DefaultMaxRetries = 3

	// DefaultBaseDelay is the fixed wait between attempts.
	DefaultBaseDelay = 1 * time.Second
)

// Result is the settled outcome of one verification pass.
// "No identity" is a legitimate anonymous result, not a failure:
// User is nil, IsAuthenticated is false, and Err is nil.
type Result struct {
	User            *identity.Identity
	IsAuthenticated bool
	Err             error
}

// Verifier performs resilient identity checks. The zero value is not
// usable; construct with New.
type Verifier struct {
	provider   identity.Provider
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMaxRetries bounds the total number of provider calls.
func WithMaxRetries(n int) Option {
	return func(v *Verifier) { v.maxRetries = n }
}

// WithBaseDelay sets the fixed delay between attempts.
func WithBaseDelay(d time.Duration) Option {
	return func(v *Verifier) { v.baseDelay = d }
}

// WithSleep replaces the inter-attempt wait, letting tests drive the
// retry loop without real timers.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(v *Verifier) { v.sleep = sleep }
}

// New creates a Verifier over the given provider.
func New(provider identity.Provider, opts ...Option) *Verifier {
	v := &Verifier{
		provider:   provider,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.maxRetries < 1 {
		v.maxRetries = 1
	}
	return v
}

// Verify checks the current identity, retrying only on provider
// unavailability. Retries are strictly sequential; total wall-clock time
// is bounded by maxRetries * baseDelay plus provider latency. The call
// always settles: on context cancellation the last provider error (or
// the context error) is surfaced.
func (v *Verifier) Verify(ctx context.Context) Result {
	var lastErr error

	for attempt := 1; attempt <= v.maxRetries; attempt++ {
		ident, err := v.provider.CurrentIdentity(ctx)
		if err == nil {
			return Result{
				User:            ident,
				IsAuthenticated: ident != nil,
			}
		}

		lastErr = err
		if !retryable(err) {
			break
		}

		if attempt < v.maxRetries {
			slog.Debug("identity check failed, retrying",
				"attempt", attempt, "maxRetries", v.maxRetries, "error", err)
			if sleepErr := v.sleep(ctx, v.baseDelay); sleepErr != nil {
				lastErr = sleepErr
				break
			}
		}
	}

	return Result{Err: lastErr}
}

// retryable reports whether another attempt could help. Only provider
// unavailability qualifies; business rejections are final.
func retryable(err error) bool {
	return errors.Is(err, identity.ErrUnavailable)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
