// Package budget owns the remaining-items counter for a harvest run.
//
// The counter is the only mutable state shared between concurrent
// enrichment workers. It is a single atomic integer with a monotonic
// decrement so billed work can never exceed the cap, regardless of how
// candidate processing interleaves.
package budget

import "sync/atomic"

// DefaultCeiling is the implementation-chosen cap used when the account
// carries no maximum-paid-items figure.
const DefaultCeiling = 1_000_000

// FreeTierLimit is the fixed per-run item cap for non-paying accounts.
const FreeTierLimit = 10

// Tracker tracks the remaining item budget for one run.
type Tracker struct {
	remaining atomic.Int64
	cap       int
}

// Options are the inputs to budget initialization.
type Options struct {
	// AccountMaxPaidItems is the account-level maximum paid items.
	// Zero means no account-level cap (DefaultCeiling applies).
	AccountMaxPaidItems int
	// UserMaxItems is the user-requested item cap. Zero means unset;
	// a negative value is honored as-is and yields an empty budget.
	UserMaxItems int
	// Paying reports whether the account is on a paid plan.
	Paying bool
}

// New computes the effective budget and returns a tracker for it.
// Policy, in order: start from the account cap (or DefaultCeiling),
// reduce to the user cap if smaller, then clamp non-paying accounts to
// FreeTierLimit. freeTierClamped reports whether the clamp fired; the
// caller surfaces that notice, once at start and once again at run end.
func New(opts Options) (t *Tracker, freeTierClamped bool) {
	capacity := DefaultCeiling
	if opts.AccountMaxPaidItems > 0 {
		capacity = opts.AccountMaxPaidItems
	}
	if opts.UserMaxItems != 0 && opts.UserMaxItems < capacity {
		capacity = opts.UserMaxItems
	}
	if !opts.Paying && capacity > FreeTierLimit {
		capacity = FreeTierLimit
		freeTierClamped = true
	}

	t = &Tracker{cap: capacity}
	t.remaining.Store(int64(capacity))
	return t, freeTierClamped
}

// Consume claims one budget slot for a candidate. It must be called
// exactly once per candidate the provider surfaces, before any enrichment
// fetch or emission for that candidate. Returns false once the counter
// goes negative, signaling the run to skip the candidate and stop.
func (t *Tracker) Consume() bool {
	return t.remaining.Add(-1) >= 0
}

// Remaining returns the current counter value. May be negative after the
// budget is exhausted; callers treat any non-positive value as empty.
func (t *Tracker) Remaining() int {
	return int(t.remaining.Load())
}

// Cap returns the effective budget computed at initialization.
func (t *Tracker) Cap() int {
	return t.cap
}

// Exhausted reports whether no budget is left.
func (t *Tracker) Exhausted() bool {
	return t.remaining.Load() <= 0
}
