// Package harvestapi implements the HTTP client for the profile-search
// provider.
//
// The client owns transport-level concerns: authentication headers,
// retry with exponential backoff on transient failures, and the
// free-tier request throttle. Run-level policy (budgeting, billing,
// pagination control) lives in the harvest package.
package harvestapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/harvestapi/prospector/iox"
	"github.com/harvestapi/prospector/types"
)

// DefaultBaseURL is the production provider endpoint.
const DefaultBaseURL = "https://api.harvest-api.com"

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultRetries is the default number of retry attempts for transient
// failures. Retry lives here, at the transport layer; the orchestrator
// never retries.
const DefaultRetries = 2

// Config configures the provider client.
type Config struct {
	// BaseURL is the provider endpoint (default DefaultBaseURL).
	BaseURL string
	// APIKey authenticates requests (required).
	APIKey string
	// Headers are run-context headers added to every request.
	Headers map[string]string
	// ListingHeaders are added to search (listing) requests only.
	ListingHeaders map[string]string
	// Timeout is the per-request timeout (default DefaultTimeout).
	Timeout time.Duration
	// Retries is the retry attempt count for 5xx/network errors
	// (default DefaultRetries).
	Retries int
	// Limiter, when set, throttles listing requests. Used to slow
	// non-paying accounts down to the free-tier request rate.
	Limiter *rate.Limiter
}

// Client is an HTTP client for the provider's search and profile APIs.
type Client struct {
	config Config
	http   *http.Client
}

// New creates a provider client from the given config.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("harvestapi: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("harvestapi: retries must be >= 0, got %d", cfg.Retries)
	}

	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Pagination is the provider's page metadata.
type Pagination struct {
	Page          int `json:"page"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// SearchPage is one page of profile search results.
// Status is the provider's reported status; 429 signals rate limiting
// and is returned without error so callers can degrade gracefully.
type SearchPage struct {
	Status     int               `json:"status"`
	Elements   []types.Candidate `json:"elements"`
	Pagination *Pagination       `json:"pagination"`
}

// ProfileResult is the outcome of a single full-profile fetch.
type ProfileResult struct {
	Status            int        `json:"status"`
	EntityID          string     `json:"entityId"`
	Element           types.Item `json:"element"`
	AvailablePayments []string   `json:"availablePayments"`
}

// SearchPage fetches one page of profile search results for the query.
// Pages are 1-based. Honors the free-tier limiter when configured.
func (c *Client) SearchPage(ctx context.Context, q types.Query, page int) (*SearchPage, error) {
	if c.config.Limiter != nil {
		if err := c.config.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("harvestapi: limiter wait: %w", err)
		}
	}

	params := url.Values{}
	params.Set("search", q.Search)
	params.Set("firstName", q.FirstName)
	params.Set("lastName", q.LastName)
	params.Set("page", strconv.Itoa(page))
	for _, v := range q.CurrentCompany {
		params.Add("currentCompany", v)
	}
	for _, v := range q.PastCompany {
		params.Add("pastCompany", v)
	}
	for _, v := range q.School {
		params.Add("school", v)
	}
	for _, v := range q.Location {
		params.Add("location", v)
	}
	for _, v := range q.IndustryID {
		params.Add("industryId", v)
	}

	var result SearchPage
	if err := c.get(ctx, "/linkedin/profile-search", params, c.config.ListingHeaders, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchProfile fetches a full profile by public handle or identifier,
// optionally requesting an email lookup.
func (c *Client) FetchProfile(ctx context.Context, handle string, findEmail bool) (*ProfileResult, error) {
	params := url.Values{}
	params.Set("url", "https://www.linkedin.com/in/"+handle)
	if findEmail {
		params.Set("findEmail", "true")
	}

	var result ProfileResult
	if err := c.get(ctx, "/linkedin/profile", params, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// get performs a GET with retries on 5xx and network errors.
// 4xx responses (including 429) are returned to the caller decoded but
// without retry: the provider's rate-limit and client-error signals are
// policy inputs, not transient faults.
func (c *Client) get(ctx context.Context, path string, params url.Values, extraHeaders map[string]string, out any) error {
	reqURL := c.config.BaseURL + path + "?" + params.Encode()

	var lastErr error
	attempts := 1 + c.config.Retries

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("harvestapi: context canceled: %w", err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("harvestapi: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		done, err := c.tryGet(ctx, reqURL, extraHeaders, out)
		if done {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("harvestapi: request failed after %d attempts: %w", attempts, lastErr)
}

// tryGet performs a single attempt. done=true means the outcome is final
// (success or non-retriable failure).
func (c *Client) tryGet(ctx context.Context, reqURL string, extraHeaders map[string]string, out any) (done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return true, fmt.Errorf("harvestapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.config.APIKey)
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("harvestapi: request: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("harvestapi: server error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return true, fmt.Errorf("harvestapi: decode response: %w", err)
	}

	// Surface the HTTP status when the payload did not carry one.
	if sp, ok := out.(*SearchPage); ok && sp.Status == 0 {
		sp.Status = resp.StatusCode
	}
	if pr, ok := out.(*ProfileResult); ok && pr.Status == 0 {
		pr.Status = resp.StatusCode
	}

	return true, nil
}
