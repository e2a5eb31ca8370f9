// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed reads the rubric feed and the session detail feed served by
// the evaluation backend. Responses are decoded from the backend's wire
// shape into pkg/types records; invalid result records are dropped with a
// warning so they render as absent.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/sgce-audit/internal/httputil"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

const (
	rubricPath  = "/rubrica"
	sessionPath = "/sesion/get-details/"
)

// StatusError reports a non-200 response from a feed.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed %s returned HTTP %d", e.URL, e.StatusCode)
}

// Client reads both feeds from one backend.
type Client struct {
	HTTP *http.Client
	Cfg  types.FeedConfig
}

// New returns a Client with an http.Client using cfg.Timeout.
func New(cfg types.FeedConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// Name returns the source identifier used in catalog errors.
func (c *Client) Name() string { return "feed:" + c.Cfg.BaseURL }

// getJSON issues a GET against the backend and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	if c.Cfg.BaseURL == "" {
		return fmt.Errorf("feed base URL not configured")
	}
	reqURL := strings.TrimRight(c.Cfg.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.Cfg.UserAgent)
	}
	if c.Cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Cfg.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, c.Cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", reqURL, err)
	}
	return nil
}

func sessionURLPath(id string) string {
	return sessionPath + url.PathEscape(id)
}
