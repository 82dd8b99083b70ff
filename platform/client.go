package platform

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

// DefaultClientTimeout is the default per-request timeout.
const DefaultClientTimeout = 15 * time.Second

// Client talks to the host platform API: user lookup and the billing
// ledger.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a platform client.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("platform client requires a base URL")
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultClientTimeout},
	}, nil
}

// User is the subset of account facts the run needs.
type User struct {
	Username string `json:"username"`
	IsPaying *bool  `json:"isPaying"`
}

// User fetches account facts for the given user ID.
func (c *Client) User(ctx context.Context, userID string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/users/%s", c.baseURL, url.PathEscape(userID)), nil)
	if err != nil {
		return nil, fmt.Errorf("platform: build user request: %w", err)
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform: user lookup: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("platform: user lookup status %d: %s", resp.StatusCode, string(msg))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("platform: decode user: %w", err)
	}
	return &user, nil
}

// Account assembles the account facts used by budgeting and billing.
// The paying flag defaults to true when the user is unknown or the
// lookup is inconclusive: only an explicit isPaying=false demotes the
// account to the free tier.
func (c *Client) Account(ctx context.Context, env Env) types.Account {
	account := types.Account{
		UserID:            env.UserID,
		Paying:            true,
		PayPerEvent:       env.IsPayPerEvent,
		MaxTotalChargeUSD: env.MaxTotalChargeUSD,
		MaxPaidItems:      env.MaxPaidItems,
	}

	if env.UserID == "" {
		return account
	}
	user, err := c.User(ctx, env.UserID)
	if err != nil {
		return account
	}
	account.Username = user.Username
	if user.IsPaying != nil && !*user.IsPaying {
		account.Paying = false
	}
	return account
}

// Charge records a billing event against the given run.
func (c *Client) Charge(ctx context.Context, runID, eventName string) error {
	body, err := json.Marshal(map[string]string{"eventName": eventName})
	if err != nil {
		return fmt.Errorf("platform: marshal charge: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/runs/%s/charge", c.baseURL, url.PathEscape(runID)), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("platform: build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform: charge: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform: charge status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (c *Client) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// RunLedger binds the client's Charge to a single run, satisfying
// billing.Ledger.
type RunLedger struct {
	client *Client
	runID  string
}

// NewRunLedger creates a ledger scoped to runID.
func NewRunLedger(client *Client, runID string) *RunLedger {
	return &RunLedger{client: client, runID: runID}
}

// Charge implements billing.Ledger.
func (l *RunLedger) Charge(ctx context.Context, eventName string) error {
	return l.client.Charge(ctx, l.runID, eventName)
}
