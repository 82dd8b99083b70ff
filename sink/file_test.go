package sink_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harvestapi/prospector/sink"
	"github.com/harvestapi/prospector/types"
)

func TestFileSink_WritesJSONLPerChannel(t *testing.T) {
	dir := t.TempDir()
	s, err := sink.NewFileSink(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := context.Background()
	for _, push := range []struct {
		id      string
		channel string
	}{
		{"p1", "short-profile"},
		{"p2", "short-profile"},
		{"p3", ""},
	} {
		if err := s.Push(ctx, types.Item{"id": push.id}, push.channel).Wait(ctx); err != nil {
			t.Fatalf("push %s: %v", push.id, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	short := readLines(t, filepath.Join(dir, "short-profile.jsonl"))
	if len(short) != 2 {
		t.Fatalf("short-profile lines = %d, want 2", len(short))
	}
	if short[0]["id"] != "p1" || short[1]["id"] != "p2" {
		t.Errorf("short-profile content = %v", short)
	}

	def := readLines(t, filepath.Join(dir, "default.jsonl"))
	if len(def) != 1 || def[0]["id"] != "p3" {
		t.Errorf("default content = %v", def)
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("bad JSONL line %q: %v", scanner.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestFileSink_ConcurrentPushes(t *testing.T) {
	dir := t.TempDir()
	s, err := sink.NewFileSink(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := context.Background()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for n := 0; n < 20; n++ {
				_ = s.Push(ctx, types.Item{"worker": n}, "items").Wait(ctx)
			}
		}(i)
	}
	for n := 0; n < 10; n++ {
		<-done
	}
	close(done)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "items.jsonl"))
	if len(lines) != 200 {
		t.Errorf("lines = %d, want 200 (no interleaved or lost writes)", len(lines))
	}
}
