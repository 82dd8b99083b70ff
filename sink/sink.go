// Package sink defines the output boundary for scraped items.
//
// A sink accepts items on named channels and acknowledges each push
// asynchronously through a PendingWrite handle. The orchestrator tracks
// only the most recently issued handle and awaits it at run end; sinks
// are expected to be independently durable once a write is accepted.
package sink

import (
	"context"
	"sync"

	"github.com/harvestapi/prospector/types"
)

// PendingWrite is the handle for an in-flight push.
type PendingWrite struct {
	done chan struct{}
	err  error
}

// NewPendingWrite creates an unsettled write handle.
// Sink implementations settle it exactly once via Complete.
func NewPendingWrite() *PendingWrite {
	return &PendingWrite{done: make(chan struct{})}
}

// CompletedWrite returns an already-settled handle carrying err.
func CompletedWrite(err error) *PendingWrite {
	p := NewPendingWrite()
	p.Complete(err)
	return p
}

// Complete settles the write with the given error (nil on success).
// Must be called exactly once.
func (p *PendingWrite) Complete(err error) {
	p.err = err
	close(p.done)
}

// Wait blocks until the write settles or the context is canceled.
func (p *PendingWrite) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sink accepts scraped items on named output channels.
// An empty channel name means the sink's default channel.
type Sink interface {
	// Push submits an item for writing and returns immediately with a
	// handle that settles when the write lands.
	Push(ctx context.Context, item types.Item, channel string) *PendingWrite

	// Close releases sink resources after all desired writes settled.
	Close() error
}

// StubSink records pushes for testing. Writes settle immediately.
type StubSink struct {
	mu     sync.Mutex
	Pushes []StubPush
	// Err, when set, settles every push with this error.
	Err error
}

// StubPush is a recorded push.
type StubPush struct {
	Item    types.Item
	Channel string
}

// NewStubSink creates a new stub sink.
func NewStubSink() *StubSink {
	return &StubSink{}
}

// Push implements Sink by recording the item.
func (s *StubSink) Push(_ context.Context, item types.Item, channel string) *PendingWrite {
	s.mu.Lock()
	s.Pushes = append(s.Pushes, StubPush{Item: item, Channel: channel})
	err := s.Err
	s.mu.Unlock()
	return CompletedWrite(err)
}

// Close implements Sink.
func (s *StubSink) Close() error { return nil }

// Recorded returns a copy of the recorded pushes.
func (s *StubSink) Recorded() []StubPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StubPush, len(s.Pushes))
	copy(out, s.Pushes)
	return out
}

// Channels returns the distinct channels pushed to, in first-seen order.
func (s *StubSink) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.Pushes {
		if !seen[p.Channel] {
			seen[p.Channel] = true
			out = append(out, p.Channel)
		}
	}
	return out
}
