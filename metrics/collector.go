// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single harvest run. It is a
// leaf package with no internal dependencies. All increment methods are
// nil-receiver safe so callers never need to guard against an absent
// collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of run metrics.
// Safe to read concurrently after creation.
type Snapshot struct {
	// Provider search
	PagesFetched int64
	RateLimited  int64

	// Candidates
	CandidatesSeen    int64
	CandidatesSkipped int64

	// Enrichment
	EnrichSuccess int64
	EnrichFailure int64

	// Output
	ItemsPushed     int64
	PushedByChannel map[string]int64

	// Billing
	ChargeEvents int64

	// Dimensions (informational, set at construction)
	Mode  string
	RunID string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	pagesFetched int64
	rateLimited  int64

	candidatesSeen    int64
	candidatesSkipped int64

	enrichSuccess int64
	enrichFailure int64

	itemsPushed     int64
	pushedByChannel map[string]int64

	chargeEvents int64

	mode  string
	runID string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(mode, runID string) *Collector {
	return &Collector{
		pushedByChannel: make(map[string]int64),
		mode:            mode,
		runID:           runID,
	}
}

// IncPageFetched records a fetched search page.
func (c *Collector) IncPageFetched() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pagesFetched++
	c.mu.Unlock()
}

// IncRateLimited records a rate-limit signal from the provider.
func (c *Collector) IncRateLimited() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rateLimited++
	c.mu.Unlock()
}

// IncCandidateSeen records a candidate surfaced by the provider.
func (c *Collector) IncCandidateSeen() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.candidatesSeen++
	c.mu.Unlock()
}

// IncCandidateSkipped records a candidate skipped for budget or identity.
func (c *Collector) IncCandidateSkipped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.candidatesSkipped++
	c.mu.Unlock()
}

// IncEnrichSuccess records a successful full-profile fetch.
func (c *Collector) IncEnrichSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.enrichSuccess++
	c.mu.Unlock()
}

// IncEnrichFailure records a failed full-profile fetch.
func (c *Collector) IncEnrichFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.enrichFailure++
	c.mu.Unlock()
}

// IncItemPushed records an item pushed to the given output channel.
func (c *Collector) IncItemPushed(channel string) {
	if c == nil {
		return
	}
	if channel == "" {
		channel = "default"
	}
	c.mu.Lock()
	c.itemsPushed++
	c.pushedByChannel[channel]++
	c.mu.Unlock()
}

// IncChargeEvent records a billing event charged against the run.
func (c *Collector) IncChargeEvent() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.chargeEvents++
	c.mu.Unlock()
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{PushedByChannel: map[string]int64{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byChannel := make(map[string]int64, len(c.pushedByChannel))
	for k, v := range c.pushedByChannel {
		byChannel[k] = v
	}

	return Snapshot{
		PagesFetched:      c.pagesFetched,
		RateLimited:       c.rateLimited,
		CandidatesSeen:    c.candidatesSeen,
		CandidatesSkipped: c.candidatesSkipped,
		EnrichSuccess:     c.enrichSuccess,
		EnrichFailure:     c.enrichFailure,
		ItemsPushed:       c.itemsPushed,
		PushedByChannel:   byChannel,
		ChargeEvents:      c.chargeEvents,
		Mode:              c.mode,
		RunID:             c.runID,
	}
}
