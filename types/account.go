package types

// Account holds the host-account facts that shape budgeting and billing.
// Assembled once at startup and passed into the orchestrator as immutable
// configuration so the core stays testable without a live host environment.
type Account struct {
	// UserID is the host-platform user identifier.
	UserID string
	// Username is the host-platform username, when known.
	Username string
	// Paying reports whether the account is on a paid plan.
	// Non-paying accounts are subject to the free-tier item cap.
	Paying bool
	// PayPerEvent reports whether each output item triggers a discrete
	// charge, as opposed to flat-rate billing handled out-of-band.
	PayPerEvent bool
	// MaxTotalChargeUSD is the account-level charge ceiling, informational.
	MaxTotalChargeUSD float64
	// MaxPaidItems is the account-level maximum paid dataset items.
	// Zero means no account-level cap.
	MaxPaidItems int
}

// RunMeta identifies the current run for logging and provider headers.
type RunMeta struct {
	ActorID  string
	RunID    string
	BuildID  string
	MemoryMB int
}
