package harvest

import (
	"context"
	"sync"

	"github.com/harvestapi/prospector/sink"
)

// RunState is the mutable aggregate for one run: the scraped-item count,
// whether a successful first page was observed, and the most recently
// issued output write.
//
// Only the latest write is retained: subsequent writes supersede earlier
// ones, and run end waits only on the most recent. This bounds the final
// wait without individually awaiting every write; the sink is expected
// to be independently durable once a push is accepted.
type RunState struct {
	mu               sync.Mutex
	scraped          int
	lastWrite        *sink.PendingWrite
	requestSucceeded bool
	totalFound       int
}

// NewRunState creates an empty run state.
func NewRunState() *RunState {
	return &RunState{}
}

// RecordWrite registers a pushed item and its in-flight write handle.
func (s *RunState) RecordWrite(pw *sink.PendingWrite) {
	s.mu.Lock()
	s.scraped++
	s.lastWrite = pw
	s.mu.Unlock()
}

// Scraped returns the number of items successfully pushed so far.
func (s *RunState) Scraped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scraped
}

// MarkRequestSucceeded records that the provider returned a successful
// first page with pagination metadata.
func (s *RunState) MarkRequestSucceeded(totalFound int) {
	s.mu.Lock()
	s.requestSucceeded = true
	s.totalFound = totalFound
	s.mu.Unlock()
}

// RequestSucceeded reports whether a successful first page was observed.
func (s *RunState) RequestSucceeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestSucceeded
}

// TotalFound returns the provider-reported total match count, when known.
func (s *RunState) TotalFound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFound
}

// WaitLastWrite blocks until the most recently recorded write settles.
// Returns nil immediately when nothing was written.
func (s *RunState) WaitLastWrite(ctx context.Context) error {
	s.mu.Lock()
	last := s.lastWrite
	s.mu.Unlock()

	if last == nil {
		return nil
	}
	return last.Wait(ctx)
}
