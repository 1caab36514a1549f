// Package scoring implements the HTTP client for the external scoring
// backend. Authentication uses an API-KEY header; every in-session call also
// carries the SESSION-ID header returned by session start.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flightops/rotables/core/logger"
	"github.com/flightops/rotables/core/scoring"
)

const apiPrefix = "/api/v1"

// Client talks to one scoring session over HTTP. It implements
// scoring.Client and is not safe for concurrent rounds, matching the
// one-runner-per-session model.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	log       logger.Logger
	sessionID string
}

var _ scoring.Client = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the given backend. The /api/v1 prefix is added
// when the base URL does not already carry it.
func New(baseURL, apiKey string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, apiPrefix) {
		base += apiPrefix
	}
	c := &Client{
		baseURL: base,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionID returns the identifier of the open session, empty before start.
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) post(ctx context.Context, path string, body any, inSession bool) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", path, err)
		}
		payload = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if inSession {
		req.Header.Set("SESSION-ID", c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("POST %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// StartSession opens a session. The backend answers with the bare session
// identifier, optionally quoted.
func (c *Client) StartSession(ctx context.Context) (string, error) {
	data, err := c.post(ctx, "/session/start", nil, false)
	if err != nil {
		return "", err
	}
	id := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if id == "" {
		return "", fmt.Errorf("session start returned an empty identifier")
	}
	c.sessionID = id
	c.log.Infof("session %s opened", id)
	return id, nil
}

// PlayRound submits one hour's instruction and decodes the outcome.
func (c *Client) PlayRound(ctx context.Context, in scoring.Instruction) (*scoring.Outcome, error) {
	if c.sessionID == "" {
		return nil, fmt.Errorf("play round: no open session")
	}
	data, err := c.post(ctx, "/play/round", in, true)
	if err != nil {
		return nil, err
	}
	var out scoring.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode round outcome: %w", err)
	}
	return &out, nil
}

// EndSession closes the open session, if any.
func (c *Client) EndSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.post(ctx, "/session/end", nil, true)
	if err != nil {
		return err
	}
	c.log.Infof("session %s closed", c.sessionID)
	c.sessionID = ""
	return nil
}
