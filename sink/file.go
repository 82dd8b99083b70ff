package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harvestapi/prospector/types"
)

// FileSink writes items as JSONL, one file per output channel, under a
// root directory. Intended for local runs and debugging. Files are
// created lazily on first push to a channel.
type FileSink struct {
	root string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileSink creates a file sink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("file sink requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file sink: create root: %w", err)
	}
	return &FileSink{
		root:  dir,
		files: make(map[string]*os.File),
	}, nil
}

// Push implements Sink. The JSONL append happens under the sink mutex so
// concurrent pushes never interleave lines; the handle settles when the
// line is written.
func (s *FileSink) Push(_ context.Context, item types.Item, channel string) *PendingWrite {
	return CompletedWrite(s.append(item, channel))
}

func (s *FileSink) append(item types.Item, channel string) error {
	line, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("file sink: marshal item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.file(channel)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("file sink: write: %w", err)
	}
	return nil
}

// file returns the open file for a channel, creating it on first use.
// Caller must hold mu.
func (s *FileSink) file(channel string) (*os.File, error) {
	name := channel
	if name == "" {
		name = "default"
	}
	if f, ok := s.files[name]; ok {
		return f, nil
	}

	path := filepath.Join(s.root, name+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file sink: open %s: %w", path, err)
	}
	s.files[name] = f
	return f, nil
}

// Close implements Sink, closing all channel files.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("file sink: close %s: %w", name, err)
		}
	}
	s.files = make(map[string]*os.File)
	return firstErr
}

// Verify FileSink implements Sink.
var _ Sink = (*FileSink)(nil)
