// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the remote completion client for the
// generative-language API.
//
// The client sends a single prompt to the generateContent endpoint and
// extracts the text of the first candidate. It never retries: exactly one
// request is made per call.
//
// # Key Types
//
//   - Client: HTTP client for the generateContent endpoint
//   - GenerateRequest / GenerateResponse: wire format of the endpoint
//   - APIError: non-2xx response from the endpoint
//
// # Usage
//
//	client := gemini.NewClient(apiKey, gemini.WithModel("gemini-pro"))
//	answer, err := client.Complete(ctx, "Hello")
//	if err != nil {
//	    log.Printf("completion failed: %v", err) // answer holds the fallback text
//	}
//
// # Fallback text
//
// Complete always returns text suitable for display. When the response has
// no usable candidate the text is FallbackNoResponse; when the request
// fails it is FallbackError. The accompanying error says which case
// occurred and is meant for diagnostics only.
//
// # Security
//
// The API key travels as the "key" query parameter. Request logging only
// records the method and path, never the query string.
package gemini
