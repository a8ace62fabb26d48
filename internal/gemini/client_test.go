// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a server that answers every request with status and
// body, and counts calls.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGenerate_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotMethod, gotCT string
	var gotBody GenerateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotCT = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL+"/"), WithModel("models/gemini-pro"))
	_, err := client.Generate(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/models/gemini-pro:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotCT)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "Hello", gotBody.Contents[0].Parts[0].Text)
}

func TestComplete_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantErr  error
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]},"finishReason":"STOP"}]}`,
			wantText: "Hi there",
		},
		{
			name:     "no candidates",
			status:   http.StatusOK,
			body:     `{"candidates":[]}`,
			wantText: FallbackNoResponse,
			wantErr:  ErrNoCandidates,
		},
		{
			name:     "blocked prompt",
			status:   http.StatusOK,
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantText: FallbackNoResponse,
			wantErr:  ErrNoCandidates,
		},
		{
			name:     "candidate without parts",
			status:   http.StatusOK,
			body:     `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantText: FallbackNoResponse,
			wantErr:  ErrMalformedResponse,
		},
		{
			name:     "empty text",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			wantText: FallbackNoResponse,
			wantErr:  ErrEmptyText,
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     `<html>oops</html>`,
			wantText: FallbackNoResponse,
			wantErr:  ErrMalformedResponse,
		},
		{
			name:     "bad key",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantText: FallbackError,
			wantErr:  ErrAuthFailed,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`,
			wantText: FallbackError,
			wantErr:  ErrRateLimited,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `internal`,
			wantText: FallbackError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := newTestServer(t, tc.status, tc.body)
			client := NewClient("k", WithBaseURL(srv.URL))

			text, err := client.Complete(context.Background(), "Hello")

			assert.Equal(t, tc.wantText, text)
			assert.Equal(t, int32(1), calls.Load(), "exactly one attempt per call")
			if tc.wantText == FallbackError || tc.wantText == FallbackNoResponse {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestComplete_ServerErrorIsAPIError(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	client := NewClient("k", WithBaseURL(srv.URL))

	_, err := client.Complete(context.Background(), "Hello")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "UNAVAILABLE", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "5xx must not be retried")
}

func TestComplete_TransportFailureRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("super-secret-key", WithBaseURL(url))
	text, err := client.Complete(context.Background(), "Hello")

	assert.Equal(t, FallbackError, text)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret-key")
}

func TestComplete_EmptyPrompt(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)
	client := NewClient("k", WithBaseURL(srv.URL))

	text, err := client.Complete(context.Background(), "   ")

	assert.Equal(t, FallbackError, text)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, int32(0), calls.Load())
}

func TestComplete_OversizedResponse(t *testing.T) {
	big := `{"candidates":[{"content":{"parts":[{"text":"` + strings.Repeat("a", MaxResponseSize) + `"}]}}]}`
	srv, _ := newTestServer(t, http.StatusOK, big)
	client := NewClient("k", WithBaseURL(srv.URL))

	text, err := client.Complete(context.Background(), "Hello")

	assert.Equal(t, FallbackError, text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestClient_Accessors(t *testing.T) {
	c := NewClient("  abcdefghijkl  ")
	assert.True(t, c.IsConfigured())
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, "********ijkl", c.MaskedKey())

	empty := NewClient("")
	assert.False(t, empty.IsConfigured())
	assert.Equal(t, "(not set)", empty.MaskedKey())
	assert.Equal(t, "****", NewClient("short").MaskedKey())
}

func TestAPIError_Error(t *testing.T) {
	withCode := &APIError{Status: 400, Code: "INVALID_ARGUMENT", Message: "bad"}
	assert.Equal(t, "generative-language error [INVALID_ARGUMENT] (HTTP 400): bad", withCode.Error())

	noCode := &APIError{Status: 502, Message: "Bad Gateway"}
	assert.Equal(t, "generative-language error (HTTP 502): Bad Gateway", noCode.Error())
	assert.Nil(t, noCode.Unwrap())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClient_UsesProvidedClient(t *testing.T) {
	var seen []string
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.Host+r.URL.Path)
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"candidates":[{"content":{"parts":[{"text":"via custom client"}]}}]}`)),
			Request:    r,
		}, nil
	})}

	client := NewClient("k", WithBaseURL("https://api.example.test/v1"), WithHTTPClient(hc), WithHTTPClient(nil))
	text, err := client.Complete(context.Background(), "Hello")

	require.NoError(t, err)
	assert.Equal(t, "via custom client", text)
	assert.Equal(t, []string{"api.example.test/v1/models/gemini-pro:generateContent"}, seen)
}
