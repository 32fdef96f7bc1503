package host

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/ready"
	"github.com/mcao2/button-layout/internal/sources"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the media center bridge
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPClient
	retryDelay time.Duration
}

// ClientOption allows configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken authenticates every request with a bearer token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetryDelay sets the base backoff between retries
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a bridge client for baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("host base URL not set")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid host base URL: %w", err)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Ping checks that the bridge is up and its pages are rendered
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("host not ready: %d", resp.StatusCode)
	}
	return nil
}

// WaitReady polls Ping until it succeeds or the policy runs out.
func (c *Client) WaitReady(ctx context.Context, policy ready.Policy) error {
	return ready.Wait(ctx, c.Ping, policy)
}

type buttonsResponse struct {
	Activity string          `json:"activity"`
	Results  []layout.Button `json:"results"`
}

func (c *Client) Buttons(ctx context.Context, activity string) ([]layout.Button, error) {
	params := url.Values{}
	if activity != "" {
		params.Set("activity", activity)
	}

	var result buttonsResponse
	if err := c.getJSON(ctx, "/buttons", params, &result); err != nil {
		return nil, fmt.Errorf("fetch buttons: %w", err)
	}
	return result.Results, nil
}

type sourcesResponse struct {
	Results []sources.Source `json:"results"`
}

func (c *Client) Sources(ctx context.Context) ([]sources.Source, error) {
	var result sourcesResponse
	if err := c.getJSON(ctx, "/sources", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}
	return result.Results, nil
}

type searchSourcesResponse struct {
	Results []struct {
		Title string `json:"title"`
	} `json:"results"`
}

// SearchSources lists the bridge's search providers. Each returned source
// queries the bridge when searched.
func (c *Client) SearchSources(ctx context.Context) ([]Source, error) {
	var result searchSourcesResponse
	if err := c.getJSON(ctx, "/search/sources", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch search sources: %w", err)
	}

	out := make([]Source, 0, len(result.Results))
	for _, r := range result.Results {
		out = append(out, &remoteSource{client: c, title: r.Title})
	}
	return out, nil
}

type searchResponse struct {
	Results []Card `json:"results"`
}

// Search runs query against one search provider
func (c *Client) Search(ctx context.Context, source, query string) ([]Card, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("query", query)

	var result searchResponse
	if err := c.getJSON(ctx, "/search", params, &result); err != nil {
		return nil, fmt.Errorf("search %s: %w", source, err)
	}
	return result.Results, nil
}

type remoteSource struct {
	client *Client
	title  string
}

func (s *remoteSource) Title() string { return s.title }

func (s *remoteSource) Search(ctx context.Context, query string) ([]Card, error) {
	return s.client.Search(ctx, s.title, query)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed: %d", resp.StatusCode)
	}

	return decodeJSON(resp.Body, v)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// doRequest performs an HTTP request with retry logic
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(req.Context(), c.retryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}

		c.authorize(req)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			wait := c.retryDelay * time.Duration(attempt+1)
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				wait = time.Duration(seconds) * time.Second
			}
			if err := sleep(req.Context(), wait); err != nil {
				return nil, err
			}
			lastErr = fmt.Errorf("rate limited: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// decodeJSON reads and decodes JSON from response body
func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
