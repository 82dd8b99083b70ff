// Package harvest drives a budgeted, billable profile-harvesting run.
//
// The orchestrator re-expresses the provider's paginated search as an
// explicit producer/consumer: a page producer with bounded look-ahead
// feeds a candidate channel, and a bounded pool of consumers claims
// budget, enriches, and emits. Budget consumption for a candidate
// happens in the dispatch loop, before the candidate's worker starts,
// so the decrement happens-before any enrichment fetch structurally.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/harvestapi/prospector/billing"
	"github.com/harvestapi/prospector/budget"
	"github.com/harvestapi/prospector/harvestapi"
	"github.com/harvestapi/prospector/log"
	"github.com/harvestapi/prospector/metrics"
	"github.com/harvestapi/prospector/sink"
	"github.com/harvestapi/prospector/types"
)

// ErrProviderSearch marks a terminal failure of the provider's paginated
// search. It propagates to the process boundary; retry, if any, belongs
// to the provider transport layer.
var ErrProviderSearch = errors.New("provider search failed")

// Concurrency defaults. Email enrichment is the most expensive per item,
// so it runs with fewer concurrent fetches.
const (
	DefaultItemConcurrency = 8
	EmailItemConcurrency   = 6
	DefaultPageLookahead   = 2
)

// Provider is the search/enrichment provider as seen by the orchestrator.
type Provider interface {
	// SearchPage fetches one page of search results (1-based).
	SearchPage(ctx context.Context, q types.Query, page int) (*harvestapi.SearchPage, error)
	// FetchProfile fetches a full profile by handle, optionally
	// requesting an email lookup.
	FetchProfile(ctx context.Context, handle string, findEmail bool) (*harvestapi.ProfileResult, error)
}

// Config assembles everything a run needs. All fields except the
// concurrency knobs are required.
type Config struct {
	Mode    types.ScrapeMode
	Query   types.Query
	Account types.Account

	Tracker  *budget.Tracker
	Provider Provider
	Sink     sink.Sink
	Ledger   billing.Ledger
	Logger   *log.Logger
	// Collector is optional; all methods are nil-safe.
	Collector *metrics.Collector

	// ItemConcurrency bounds concurrent enrichment fetches.
	// Zero selects the mode default.
	ItemConcurrency int
	// PageLookahead bounds concurrent page fetches beyond the first.
	// Zero selects DefaultPageLookahead.
	PageLookahead int
}

// Orchestrator executes a single harvest run.
type Orchestrator struct {
	config Config
}

// NewOrchestrator validates the config and creates an orchestrator.
func NewOrchestrator(config Config) (*Orchestrator, error) {
	if config.Tracker == nil {
		return nil, errors.New("harvest: tracker is required")
	}
	if config.Provider == nil {
		return nil, errors.New("harvest: provider is required")
	}
	if config.Sink == nil {
		return nil, errors.New("harvest: sink is required")
	}
	if config.Ledger == nil {
		return nil, errors.New("harvest: ledger is required")
	}
	if config.Logger == nil {
		return nil, errors.New("harvest: logger is required")
	}
	if config.ItemConcurrency == 0 {
		if config.Mode == types.ModeEmail {
			config.ItemConcurrency = EmailItemConcurrency
		} else {
			config.ItemConcurrency = DefaultItemConcurrency
		}
	}
	if config.PageLookahead == 0 {
		config.PageLookahead = DefaultPageLookahead
	}
	return &Orchestrator{config: config}, nil
}

// Run executes the run end-to-end.
//
// Execution flow:
//  1. Fetch the first page and inspect its metadata
//  2. Produce candidates (bounded page look-ahead)
//  3. Consume candidates (budget claim, then bounded enrichment)
//  4. Settle the actor-start charge
//  5. Await the most recent output write
//
// The returned error is non-nil only for a terminal search failure.
func (o *Orchestrator) Run(ctx context.Context) (*RunState, error) {
	cfg := &o.config
	state := NewRunState()

	if cfg.Tracker.Exhausted() {
		// Callers check budget before starting; this is the structural
		// backstop for the "never start on empty budget" invariant.
		cfg.Logger.Warn("run started with empty budget", nil)
		return state, nil
	}

	first, err := cfg.Provider.SearchPage(ctx, cfg.Query, 1)
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrProviderSearch, err)
	}
	cfg.Collector.IncPageFetched()
	o.inspectFirstPage(first, state)

	totalPages := 1
	if first.Pagination != nil {
		totalPages = first.Pagination.TotalPages
	}

	candidates := make(chan types.Candidate)
	stopCh := make(chan struct{})
	var stopOnce sync.Once
	signalStop := func() { stopOnce.Do(func() { close(stopCh) }) }

	searchErrCh := make(chan error, 1)
	go o.produce(ctx, first.Elements, totalPages, candidates, stopCh, searchErrCh)

	items, ictx := errgroup.WithContext(ctx)
	items.SetLimit(cfg.ItemConcurrency)

	for candidate := range candidates {
		candidate := candidate
		cfg.Collector.IncCandidateSeen()
		if !candidate.Valid() {
			cfg.Collector.IncCandidateSkipped()
			continue
		}

		// Budget is claimed here, in emission order, before the worker
		// is dispatched. A failed claim skips the candidate and ends
		// pagination early; the channel is still drained so every
		// surfaced candidate is accounted for.
		if !cfg.Tracker.Consume() {
			cfg.Collector.IncCandidateSkipped()
			signalStop()
			continue
		}

		items.Go(func() error {
			o.process(ictx, candidate, state)
			return nil
		})
	}
	// Workers never return errors; failures are contained per candidate.
	_ = items.Wait()
	signalStop()

	if searchErr := <-searchErrCh; searchErr != nil {
		return state, fmt.Errorf("%w: %v", ErrProviderSearch, searchErr)
	}

	o.settleStartCharge(ctx, state)

	if err := state.WaitLastWrite(ctx); err != nil {
		cfg.Logger.Warn("final write did not settle cleanly", map[string]any{
			"error": err.Error(),
		})
	}
	return state, nil
}

// inspectFirstPage handles the first page's metadata: a rate-limit
// response is a non-fatal signal, a successful page with pagination
// marks the run billable and surfaces the reported total.
func (o *Orchestrator) inspectFirstPage(page *harvestapi.SearchPage, state *RunState) {
	cfg := &o.config
	switch {
	case page.Status == http.StatusTooManyRequests:
		cfg.Logger.Error("too many requests", nil)
		cfg.Collector.IncRateLimited()
	case page.Pagination != nil:
		state.MarkRequestSucceeded(page.Pagination.TotalElements)
		cfg.Logger.Info("search succeeded", map[string]any{
			"total_profiles": page.Pagination.TotalElements,
			"total_pages":    page.Pagination.TotalPages,
		})
	}
}

// produce emits the first page's candidates, then fetches the remaining
// pages with bounded look-ahead, emitting as pages complete. It closes
// the candidate channel when done and reports the first terminal search
// error on searchErrCh (nil when pagination ended normally).
func (o *Orchestrator) produce(
	ctx context.Context,
	firstElements []types.Candidate,
	totalPages int,
	candidates chan<- types.Candidate,
	stopCh <-chan struct{},
	searchErrCh chan<- error,
) {
	cfg := &o.config
	defer close(candidates)

	emit := func(batch []types.Candidate) bool {
		for _, c := range batch {
			select {
			case candidates <- c:
			case <-stopCh:
				return false
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	if !emit(firstElements) || totalPages <= 1 {
		searchErrCh <- nil
		return
	}

	pages, pctx := errgroup.WithContext(ctx)
	pages.SetLimit(cfg.PageLookahead)

	for page := 2; page <= totalPages; page++ {
		page := page
		select {
		case <-stopCh:
			searchErrCh <- nil
			_ = pages.Wait()
			return
		default:
		}

		pages.Go(func() error {
			sp, err := cfg.Provider.SearchPage(pctx, cfg.Query, page)
			if err != nil {
				return err
			}
			cfg.Collector.IncPageFetched()
			if sp.Status == http.StatusTooManyRequests {
				cfg.Logger.Warn("page fetch rate limited", map[string]any{"page": page})
				cfg.Collector.IncRateLimited()
				return nil
			}
			emit(sp.Elements)
			return nil
		})
	}

	searchErrCh <- pages.Wait()
}

// process handles one budget-claimed candidate: enrich according to
// mode, decide the billing channel, and push to the sink. Enrichment
// failures are contained; one bad candidate never aborts the run.
func (o *Orchestrator) process(ctx context.Context, candidate types.Candidate, state *RunState) {
	cfg := &o.config

	var item types.Item
	var capabilities []string

	if o.config.Mode == types.ModeShort {
		// Cheaper tier: the search result itself is the item.
		item = types.ItemFromCandidate(candidate)
	} else {
		result, err := cfg.Provider.FetchProfile(ctx, candidate.Handle(), cfg.Mode == types.ModeEmail)
		if err != nil {
			cfg.Logger.Warn("profile fetch failed", map[string]any{
				"profile": candidate.Ref(),
				"error":   err.Error(),
			})
			cfg.Collector.IncEnrichFailure()
			return
		}
		if result.Element == nil {
			cfg.Logger.Warn("profile fetch returned no item", map[string]any{
				"profile": candidate.Ref(),
				"status":  result.Status,
			})
			cfg.Collector.IncEnrichFailure()
			return
		}
		cfg.Collector.IncEnrichSuccess()
		item = result.Element
		capabilities = result.AvailablePayments
	}

	decision := billing.Decide(cfg.Mode, capabilities, cfg.Account.PayPerEvent)
	pending := cfg.Sink.Push(ctx, item, decision.Channel)
	state.RecordWrite(pending)
	cfg.Collector.IncItemPushed(decision.Channel)

	cfg.Logger.Info("scraped profile", map[string]any{
		"profile": item.Ref(),
		"channel": decision.Channel,
	})
}

// settleStartCharge records the run-level actor-start event for runs
// that yielded few or no billable items but did reach the provider.
func (o *Orchestrator) settleStartCharge(ctx context.Context, state *RunState) {
	cfg := &o.config
	if !billing.ShouldChargeStart(state.Scraped(), state.RequestSucceeded()) {
		return
	}
	if err := cfg.Ledger.Charge(ctx, billing.EventActorStart); err != nil {
		cfg.Logger.Warn("actor-start charge failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	cfg.Collector.IncChargeEvent()
}
