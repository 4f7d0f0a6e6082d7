// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
epcloud_client.go - EPEver cloud HTTP client

Every endpoint of the open API is a JSON POST answered with the envelope
{status, info, data}. This file holds the transport: request building,
token header, request pacing, HTTP 429 backoff and envelope decoding.
The typed endpoint methods live in epcloud_endpoints.go.

Resilience:
  - Pacing: golang.org/x/time/rate limiter in front of every request
  - Rate limiting: exponential backoff (1s, 2s, 4s, 8s, 16s) on HTTP 429,
    honouring Retry-After
  - Circuit breaker: see circuit_breaker.go
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/metrics"
	"github.com/tomtom215/solarguardian/internal/models/epcloud"
)

// maxErrorBodySize limits how much of a failed response body is read.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads at most maxErrorBodySize bytes of r for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// EPCloudClient talks to the EPEver open API.
//
// Thread Safety: safe for concurrent use. The limiter is shared between
// callers.
type EPCloudClient struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int           // HTTP 429 retries
	retryBaseDelay time.Duration // first 429 backoff, doubled per retry
}

// NewEPCloudClient builds a client from the remote API configuration.
func NewEPCloudClient(cfg *config.SolarguardianConfig) *EPCloudClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &EPCloudClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// post sends body to endpoint and returns the decoded envelope. A non-zero
// envelope status is returned as *StatusError together with the envelope.
func (c *EPCloudClient) post(ctx context.Context, endpoint, token string, body interface{}) (*epcloud.Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	start := time.Now()
	env, err := c.roundTrip(ctx, endpoint, token, payload)
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !env.OK():
		result = "status_error"
	}
	metrics.RecordEPCloudRequest(endpoint, result, time.Since(start))
	if err != nil {
		return nil, err
	}

	if !env.OK() {
		return env, &StatusError{Endpoint: endpoint, Status: env.Status.Int64(), Info: env.Info}
	}
	return env, nil
}

func (c *EPCloudClient) roundTrip(ctx context.Context, endpoint, token string, payload []byte) (*epcloud.Envelope, error) {
	resp, err := c.doRequestWithRateLimit(ctx, endpoint, token, payload)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%s request failed with HTTP %d: %s", endpoint, resp.StatusCode, string(body))
	}

	var env epcloud.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return &env, nil
}

// doRequestWithRateLimit sends one POST, waiting on the limiter first and
// retrying HTTP 429 with exponential backoff.
func (c *EPCloudClient) doRequestWithRateLimit(ctx context.Context, endpoint, token string, payload []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set(epcloud.HeaderAccessToken, token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()
		metrics.EPCloudRateLimited.Inc()
		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if seconds, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// decodeData decodes the envelope payload into T.
func decodeData[T any](env *epcloud.Envelope, endpoint string) (*T, error) {
	var out T
	if len(bytes.TrimSpace(env.Data)) == 0 || string(bytes.TrimSpace(env.Data)) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	return &out, nil
}
