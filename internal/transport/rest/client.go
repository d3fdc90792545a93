// Package rest wraps the chat service's HTTP API. Every request carries
// the stored bearer token; failures surface as *APIError except for the
// two documented swallow points (room listing, flaky history).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the bearer token attached to every request.
// Clear is invoked when the server rejects the session outright.
type TokenSource interface {
	Load() (string, error)
	Clear() error
}

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

// APIError is a non-2xx response or transport failure, carrying the
// status the server answered with (0 when the request never completed).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// errorBody is the error envelope the server emits.
type errorBody struct {
	Error string `json:"error"`
}

// do runs one request and decodes the response into out when non-nil.
// Returns the HTTP status alongside any error so callers can tell the
// sentinel statuses (204, 5xx) apart.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, err := c.tokens.Load(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The session is dead; drop the stored token so the next run
		// prompts for a fresh login.
		if err := c.tokens.Clear(); err != nil {
			log.Printf("rest: clearing rejected token: %v", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error != "" {
			msg = eb.Error
		}
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}
