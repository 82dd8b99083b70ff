package sink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harvestapi/prospector/sink"
	"github.com/harvestapi/prospector/types"
)

func TestPendingWrite_WaitReturnsResult(t *testing.T) {
	p := sink.NewPendingWrite()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Complete(nil)
	}()

	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestPendingWrite_WaitPropagatesError(t *testing.T) {
	wantErr := errors.New("write failed")
	p := sink.CompletedWrite(wantErr)

	if err := p.Wait(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Wait() = %v, want %v", err, wantErr)
	}
}

func TestPendingWrite_WaitHonorsContext(t *testing.T) {
	p := sink.NewPendingWrite() // never settles

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestStubSink_RecordsChannels(t *testing.T) {
	s := sink.NewStubSink()
	ctx := context.Background()

	_ = s.Push(ctx, types.Item{"id": "a"}, "short-profile")
	_ = s.Push(ctx, types.Item{"id": "b"}, "short-profile")
	_ = s.Push(ctx, types.Item{"id": "c"}, "")

	pushes := s.Recorded()
	if len(pushes) != 3 {
		t.Fatalf("recorded %d pushes, want 3", len(pushes))
	}
	channels := s.Channels()
	if len(channels) != 2 || channels[0] != "short-profile" || channels[1] != "" {
		t.Errorf("channels = %v", channels)
	}
}
