package daemonclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrAPIUnavailable indicates the daemon API is not configured or reachable.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

// Client talks to a running autotexd over its HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// DaemonStatus mirrors the daemon's /api/status payload.
type DaemonStatus struct {
	Running            bool   `json:"running"`
	CacheDBPath        string `json:"cache_db_path"`
	CacheEntries       int64  `json:"cache_entries"`
	LockFilePath       string `json:"lock_file_path"`
	CompilerConfigured bool   `json:"compiler_configured"`
}

// CompileState mirrors the daemon's compilation task payload.
type CompileState struct {
	SubmissionID string `json:"submission_id"`
	Checksum     string `json:"checksum"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

// New builds a client for the given bind address. An empty bind yields a nil
// client whose calls fail with ErrAPIUnavailable.
func New(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{},
	}, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var status DaemonStatus
	resp, err := c.do(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return status, err
	}
	defer resp.Body.Close()
	if err := decodeError(resp); err != nil {
		return status, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}

// Compile asks the daemon to start a compilation.
func (c *Client) Compile(ctx context.Context, submissionID int64, checksum string) (CompileState, error) {
	return c.compileState(ctx, http.MethodPost, submissionID, "compile", checksum)
}

// CompileStatus polls a compilation's state.
func (c *Client) CompileStatus(ctx context.Context, submissionID int64, checksum string) (CompileState, error) {
	return c.compileState(ctx, http.MethodGet, submissionID, "status", checksum)
}

func (c *Client) compileState(ctx context.Context, method string, submissionID int64, action, checksum string) (CompileState, error) {
	var state CompileState
	resp, err := c.do(ctx, method, submissionPath(submissionID, action, checksum), nil)
	if err != nil {
		return state, err
	}
	defer resp.Body.Close()
	if err := decodeError(resp); err != nil {
		return state, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return state, fmt.Errorf("decode compilation state: %w", err)
	}
	return state, nil
}

// Log retrieves the annotated (or in-progress JSON) log as served by the
// daemon, along with its content type.
func (c *Client) Log(ctx context.Context, submissionID int64, checksum string) (string, string, error) {
	resp, err := c.do(ctx, http.MethodGet, submissionPath(submissionID, "log", checksum), nil)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if err := decodeError(resp); err != nil {
		return "", "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read log body: %w", err)
	}
	return string(data), resp.Header.Get("Content-Type"), nil
}

// Preview streams the compiled preview into w and returns its content type.
func (c *Client) Preview(ctx context.Context, submissionID int64, checksum string, w io.Writer) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, submissionPath(submissionID, "preview", checksum), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := decodeError(resp); err != nil {
		return "", err
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("stream preview: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if c == nil {
		return nil, ErrAPIUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build daemon request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	return resp, nil
}

func submissionPath(submissionID int64, action, checksum string) string {
	values := url.Values{}
	values.Set("checksum", checksum)
	return "/api/submissions/" + strconv.FormatInt(submissionID, 10) + "/" + action + "?" + values.Encode()
}

func decodeError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon returned %d", resp.StatusCode)
}
