// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Configuration constants for the generative-language API.
const (
	// DefaultBaseURL is the base URL of the generative-language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-pro"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	defaultUserAgent = "chatai/1.0"
)

// Fallback texts shown in place of an answer.
const (
	// FallbackNoResponse is returned when the response has no usable text.
	FallbackNoResponse = "Sorry, no response received."

	// FallbackError is returned when the request failed.
	FallbackError = "Sorry - Something went wrong. Please try again!"
)

// sharedHTTPClient has no overall timeout: each call is a single attempt
// bounded only by the caller's context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// Error variables for the completion client.
var (
	// ErrEmptyPrompt indicates Complete was called without text.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrNoCandidates indicates the response carried no candidates.
	ErrNoCandidates = errors.New("no candidates in response")

	// ErrEmptyText indicates the first candidate's text was empty.
	ErrEmptyText = errors.New("empty candidate text")

	// ErrMalformedResponse indicates the body could not be interpreted.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrAuthFailed indicates the API key was missing, invalid or not permitted.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the configured model does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// APIError represents a non-2xx response from the API.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // API status, e.g. "INVALID_ARGUMENT"
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("generative-language error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("generative-language error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if e.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Message), "api key") {
		return ErrAuthFailed
	}
	return nil
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends prompts to the generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithModel sets the model name, with or without the "models/" prefix.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new client with the given API key.
//
// An empty key is allowed: requests are still sent and fail server-side,
// which callers see as an ordinary request failure.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		userAgent:  defaultUserAgent,
		httpClient: sharedHTTPClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// MaskedKey returns the API key with all but the last four characters hidden.
func (c *Client) MaskedKey() string {
	if c.apiKey == "" {
		return "(not set)"
	}
	if len(c.apiKey) <= 8 {
		return "****"
	}
	return strings.Repeat("*", 8) + c.apiKey[len(c.apiKey)-4:]
}

// endpoint returns the generateContent URL including the key parameter.
func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent?" + q.Encode()
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends prompt and returns the first candidate's text.
//
// The returned text is always displayable. When err is non-nil the text is
// one of the fallback strings: FallbackNoResponse if the response held no
// usable candidate, FallbackError if the request itself failed.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return FallbackNoResponse, err
		}
		return FallbackError, err
	}

	text, err := resp.FirstText()
	if err != nil {
		return FallbackNoResponse, err
	}
	return text, nil
}

// Generate performs exactly one generateContent request and decodes the
// response envelope.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerateResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	bodyBytes, err := json.Marshal(NewTextRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redactURLError(err))
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var out GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// parseErrorResponse converts a non-2xx body into an *APIError.
func parseErrorResponse(statusCode int, body []byte) error {
	var envelope apiErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			Status:  statusCode,
			Code:    envelope.Error.Status,
			Message: envelope.Error.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &APIError{Status: statusCode, Message: msg}
}

// redactURLError strips the query string (which carries the key) from
// *url.Error values produced by the HTTP client.
func redactURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
		}
	}
	return err
}

// logRequest logs an API request without the query string.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %s (%v)", resp.Status, duration.Round(time.Millisecond))
}
