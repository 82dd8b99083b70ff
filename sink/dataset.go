package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/harvestapi/prospector/iox"
	"github.com/harvestapi/prospector/types"
)

// DefaultDatasetTimeout is the default per-push HTTP timeout.
const DefaultDatasetTimeout = 30 * time.Second

// DatasetConfig configures the host-platform dataset sink.
type DatasetConfig struct {
	// BaseURL is the host platform API endpoint (required).
	BaseURL string
	// Token authenticates dataset writes.
	Token string
	// RunID scopes pushed items to the current run (required).
	RunID string
	// Timeout is the per-push timeout (default DefaultDatasetTimeout).
	Timeout time.Duration
}

// DatasetSink pushes items to the host platform's dataset API.
// Each push runs in its own goroutine so callers never block on sink
// latency; the PendingWrite handle settles when the POST returns.
type DatasetSink struct {
	config DatasetConfig
	client *http.Client
}

// NewDatasetSink creates a dataset sink from the given config.
func NewDatasetSink(cfg DatasetConfig) (*DatasetSink, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("dataset sink requires a base URL")
	}
	if cfg.RunID == "" {
		return nil, errors.New("dataset sink requires a run ID")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDatasetTimeout
	}

	return &DatasetSink{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Push implements Sink. The write settles when the POST completes.
func (s *DatasetSink) Push(ctx context.Context, item types.Item, channel string) *PendingWrite {
	pending := NewPendingWrite()
	go func() {
		pending.Complete(s.post(ctx, item, channel))
	}()
	return pending
}

func (s *DatasetSink) post(ctx context.Context, item types.Item, channel string) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("dataset sink: marshal item: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/runs/%s/items", s.config.BaseURL, url.PathEscape(s.config.RunID))
	if channel != "" {
		endpoint += "?channel=" + url.QueryEscape(channel)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dataset sink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dataset sink: push: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dataset sink: push rejected with status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

// Close implements Sink.
func (s *DatasetSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Verify DatasetSink implements Sink.
var _ Sink = (*DatasetSink)(nil)
