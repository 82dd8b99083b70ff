package billing

import (
	"context"
	"sync"
)

// StubLedger records charges for testing.
type StubLedger struct {
	mu     sync.Mutex
	Events []string
	// Err, when set, is returned from every Charge call.
	Err error
}

// NewStubLedger creates a new stub ledger.
func NewStubLedger() *StubLedger {
	return &StubLedger{}
}

// Charge implements Ledger by recording the event name.
func (l *StubLedger) Charge(_ context.Context, eventName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Events = append(l.Events, eventName)
	return nil
}

// Charged returns a copy of the recorded event names.
func (l *StubLedger) Charged() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.Events))
	copy(out, l.Events)
	return out
}
