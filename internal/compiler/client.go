package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autotex/internal/config"
)

// Doer describes the HTTP client used by the compiler service client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TaskStatus is the compiler service's view of one compilation.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "in_progress"
	StatusSucceeded  TaskStatus = "succeeded"
	StatusFailed     TaskStatus = "failed"
)

// Compilation describes one compilation task for a source/checksum pair.
type Compilation struct {
	SourceID string     `json:"source_id"`
	Checksum string     `json:"checksum"`
	Status   TaskStatus `json:"status"`
	Reason   string     `json:"reason,omitempty"`
}

// Client talks to the compiler service. The zero value is an unconfigured
// client whose every call fails with ErrUnavailable.
type Client struct {
	baseURL string
	token   string
	http    Doer
}

// NewClient builds a client from application config. A missing base URL
// yields an unconfigured client rather than an error so the CLI can still
// run offline commands.
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || strings.TrimSpace(cfg.Compiler.BaseURL) == "" {
		return &Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.Compiler.BaseURL), "/"),
		token:   strings.TrimSpace(cfg.Compiler.AuthToken),
		http:    &http.Client{Timeout: time.Duration(cfg.Compiler.RequestTimeout) * time.Second},
	}
}

// NewClientWith constructs a client against an explicit base URL and Doer.
func NewClientWith(baseURL, token string, doer Doer) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    doer,
	}
}

// Configured reports whether the client has a service URL to talk to.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.http != nil
}

// Start requests a new compilation for the source/checksum pair. The service
// treats an already-running compilation as a no-op and returns its current
// state.
func (c *Client) Start(ctx context.Context, sourceID, checksum string) (*Compilation, error) {
	payload, err := json.Marshal(Compilation{SourceID: sourceID, Checksum: checksum})
	if err != nil {
		return nil, fmt.Errorf("encode start request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/compilations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "start compilation"); err != nil {
		return nil, err
	}
	return decodeCompilation(resp.Body)
}

// Status polls the compiler service for the task's current state.
func (c *Client) Status(ctx context.Context, sourceID, checksum string) (*Compilation, error) {
	resp, err := c.do(ctx, http.MethodGet, taskPath(sourceID, checksum), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "poll compilation"); err != nil {
		return nil, err
	}
	return decodeCompilation(resp.Body)
}

// Log fetches the raw autotex transcript for the task.
func (c *Client) Log(ctx context.Context, sourceID, checksum string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, taskPath(sourceID, checksum)+"/log", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "fetch log"); err != nil {
		return "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read log body: %w", err)
	}
	return string(data), nil
}

// Preview streams the produced PDF preview. The caller owns the returned
// body and must close it.
func (c *Client) Preview(ctx context.Context, sourceID, checksum string) (io.ReadCloser, string, error) {
	resp, err := c.do(ctx, http.MethodGet, taskPath(sourceID, checksum)+"/preview", nil)
	if err != nil {
		return nil, "", err
	}

	if err := checkStatus(resp, "fetch preview"); err != nil {
		resp.Body.Close()
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return resp.Body, contentType, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build compiler request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return resp, nil
}

func taskPath(sourceID, checksum string) string {
	return "/compilations/" + sourceID + "/" + checksum
}

func checkStatus(resp *http.Response, operation string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: service returned %d", operation, ErrTransient, resp.StatusCode)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("%s: service returned %d", operation, resp.StatusCode)
	}
	return nil
}

func decodeCompilation(body io.Reader) (*Compilation, error) {
	var task Compilation
	if err := json.NewDecoder(body).Decode(&task); err != nil {
		return nil, fmt.Errorf("decode compilation: %w", err)
	}
	return &task, nil
}
