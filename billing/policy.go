// Package billing selects output channels and billing events for scraped
// items, and owns the run-level actor-start charge.
package billing

import (
	"context"
	"slices"

	"github.com/harvestapi/prospector/types"
)

// Output channel names for pay-per-event accounts. An empty channel means
// the sink's default channel.
const (
	ChannelDefault          = ""
	ChannelShortProfile     = "short-profile"
	ChannelFullProfile      = "full-profile"
	ChannelFullProfileEmail = "full-profile-with-email"
)

// EventActorStart is the run-level billing event charged once for runs
// that yield few or no billable items, so minimal usage still registers.
const EventActorStart = "actor-start"

// StartChargeThreshold is the scraped-item count at or under which the
// actor-start event is charged.
const StartChargeThreshold = 5

// Ledger records billing events against the current run.
// Implementations are fire-and-forget from the caller's perspective:
// charge failures are logged, never fatal, and idempotency is not
// guaranteed beyond at-most-once per logical trigger.
type Ledger interface {
	Charge(ctx context.Context, eventName string) error
}

// Decision is the derived billing outcome for a single item. It has no
// lifecycle of its own; it is computed per item and immediately applied.
type Decision struct {
	// Channel is the output channel the item is pushed to.
	Channel string
}

// Decide selects the output channel for an item. Deterministic given its
// inputs: no randomness, no time-dependence.
//
// Accounts that are not pay-per-event always use the default channel;
// their billing is settled out-of-band by the host. Pay-per-event
// accounts route by mode, with EMAIL falling back to the full-profile
// channel when the provider did not actually resolve an email.
func Decide(mode types.ScrapeMode, capabilities []string, payPerEvent bool) Decision {
	if !payPerEvent {
		return Decision{Channel: ChannelDefault}
	}

	switch mode {
	case types.ModeShort:
		return Decision{Channel: ChannelShortProfile}
	case types.ModeEmail:
		if slices.Contains(capabilities, types.PaymentCapabilityProfileWithEmail) {
			return Decision{Channel: ChannelFullProfileEmail}
		}
		return Decision{Channel: ChannelFullProfile}
	default:
		return Decision{Channel: ChannelFullProfile}
	}
}

// ShouldChargeStart reports whether the actor-start event applies:
// a successful first page was observed and the run produced at most
// StartChargeThreshold items.
func ShouldChargeStart(scrapedItems int, requestSucceeded bool) bool {
	return requestSucceeded && scrapedItems <= StartChargeThreshold
}
