// Package ollamahttp is the JSON-over-HTTP client shared by the Ollama
// embedding and generation adapters.
//
// Failures worth retrying are wrapped with domain.ErrTransient: refused or
// reset connections, client timeouts (also while reading the body), truncated
// bodies, and 429 or 5xx responses. Cancellation
// by the caller and every other response are returned as permanent errors.
package ollamahttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 4096

// Client talks to one Ollama server.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for baseURL whose requests are bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// PostJSON sends in as a JSON body to path and decodes a 200 response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req, out)
}

// model is one entry of GET /api/tags.
type model struct {
	Name string `json:"name"`
}

type tagsResponse struct {
	Models []model `json:"models"`
}

// Models lists the models pulled on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var tags tagsResponse
	if err := c.do(ctx, req, &tags); err != nil {
		return nil, err
	}
	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// CheckModel verifies the server is reachable and has name pulled.
// A name without a tag matches any tag of that model.
func (c *Client) CheckModel(ctx context.Context, name string) error {
	names, err := c.Models(ctx)
	if err != nil {
		return fmt.Errorf("ollama at %s: %w", c.baseURL, err)
	}
	for _, n := range names {
		if HasModel(n, name) {
			return nil
		}
	}
	return fmt.Errorf("%w: model %q is not pulled on %s (run `ollama pull %s`)",
		domain.ErrNotFound, name, c.baseURL, name)
}

// HasModel reports whether the listed model satisfies the wanted name.
func HasModel(listed, want string) bool {
	if listed == want {
		return true
	}
	if strings.Contains(want, ":") {
		return false
	}
	base, _, _ := strings.Cut(listed, ":")
	return base == want
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("send request: %w", ctx.Err())
		}
		return fmt.Errorf("%w: send request: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("read response: %w", ctx.Err())
		}
		if interruptedRead(err) {
			return fmt.Errorf("%w: read response: %w", domain.ErrTransient, err)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// interruptedRead reports whether a body read failed in the network rather
// than on bad JSON.
func interruptedRead(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func statusError(resp *http.Response) error {
	detail := "failed to read response"
	if body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		detail = strings.TrimSpace(string(body))
	}
	err := fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, detail)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}
