// Package browser provides a client for the headless browser sidecar that
// renders the landing page and manipulates the voice-agent widget on it.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/novavoice/nova-voice/pkg/logging"
)

// HealthResponse is the health check response from the sidecar.
type HealthResponse struct {
	Status       string `json:"status"` // ok, degraded, error
	Version      string `json:"version"`
	BrowserReady bool   `json:"browserReady"`
	Uptime       int    `json:"uptime"` // seconds
}

// WidgetRequest targets the widget on one rendered page.
type WidgetRequest struct {
	PageURL           string `json:"pageUrl"`
	ElementTag        string `json:"elementTag"`
	ContainerSelector string `json:"containerSelector,omitempty"`
	Timeout           int    `json:"timeout,omitempty"` // milliseconds, default 10000
}

// WidgetState is returned by inspect and relocate.
type WidgetState struct {
	Success   bool   `json:"success"`
	Found     bool   `json:"found"`
	Relocated bool   `json:"relocated"`
	Error     string `json:"error,omitempty"`
}

// CleanupResponse is returned by the stray cleanup endpoint.
type CleanupResponse struct {
	Success bool   `json:"success"`
	Removed int    `json:"removed"`
	Error   string `json:"error,omitempty"`
}

// Client is an HTTP client for the browser sidecar service. It satisfies
// widget.Host for a single page.
type Client struct {
	baseURL    string
	pageURL    string
	elementTag string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithElementTag overrides the custom element the widget renders as.
func WithElementTag(tag string) ClientOption {
	return func(c *Client) {
		if tag != "" {
			c.elementTag = tag
		}
	}
}

// NewClient creates a sidecar client bound to pageURL.
func NewClient(baseURL, pageURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		pageURL:    pageURL,
		elementTag: "elevenlabs-convai",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Health checks the health of the browser sidecar.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("browser: create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browser: health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("browser: health check failed with status %d: %s", resp.StatusCode, string(body))
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("browser: decode health response: %w", err)
	}

	return &health, nil
}

// IsReady checks if the browser sidecar is ready to accept requests.
func (c *Client) IsReady(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ready", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Inspect reports whether the widget rendered and already sits in containerSelector.
func (c *Client) Inspect(ctx context.Context, containerSelector string) (bool, bool, error) {
	var state WidgetState
	if err := c.post(ctx, "/api/v1/widget/inspect", c.widgetRequest(containerSelector), &state); err != nil {
		return false, false, err
	}
	if !state.Success {
		return false, false, fmt.Errorf("browser: inspect failed: %s", state.Error)
	}
	return state.Found, state.Relocated, nil
}

// Relocate moves the widget into containerSelector. The sidecar treats an
// already-relocated widget as success.
func (c *Client) Relocate(ctx context.Context, containerSelector string) error {
	var state WidgetState
	if err := c.post(ctx, "/api/v1/widget/relocate", c.widgetRequest(containerSelector), &state); err != nil {
		return err
	}
	if !state.Success || !state.Relocated {
		return fmt.Errorf("browser: relocate failed: %s", state.Error)
	}
	return nil
}

// RemoveStrays deletes floating launcher leftovers from the page.
func (c *Client) RemoveStrays(ctx context.Context) (int, error) {
	var out CleanupResponse
	if err := c.post(ctx, "/api/v1/widget/cleanup", c.widgetRequest(""), &out); err != nil {
		return 0, err
	}
	if !out.Success {
		return 0, fmt.Errorf("browser: cleanup failed: %s", out.Error)
	}
	return out.Removed, nil
}

func (c *Client) widgetRequest(containerSelector string) WidgetRequest {
	return WidgetRequest{
		PageURL:           c.pageURL,
		ElementTag:        c.elementTag,
		ContainerSelector: containerSelector,
		Timeout:           10000,
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("browser: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("browser: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("browser: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("browser: %s failed with status %d: %s", path, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("browser: decode response: %w", err)
	}
	c.logger.Debug("sidecar call", "path", path, "status", resp.StatusCode)
	return nil
}
