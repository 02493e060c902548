// Package client talks to a running pagesync daemon.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/pagesync/internal/daemon"
)

const (
	requestTimeout = 5 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrConflict means the daemon rejected the request because a transition is in flight.
	ErrConflict = errors.New("client: transition in progress")
	// ErrBadRequest means the daemon rejected the request as invalid.
	ErrBadRequest = errors.New("client: bad request")
)

// Client calls the daemon HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the daemon listening on addr (host:port or a URL).
func New(addr string) *Client {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{baseURL: base, http: &http.Client{}}
}

// Health reports whether the daemon answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	body, err := c.do(ctx, http.MethodGet, "/v1/status", nil)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("client: parsing status: %w", err)
	}
	return st, nil
}

// Events returns the daemon's retained events, oldest first.
func (c *Client) Events(ctx context.Context) ([]daemon.Event, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/events", nil)
	if err != nil {
		return nil, err
	}
	var events []daemon.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("client: parsing events: %w", err)
	}
	return events, nil
}

// Navigate makes an external route change.
func (c *Client) Navigate(ctx context.Context, path string) (daemon.State, error) {
	return c.postState(ctx, "/v1/navigate", daemon.NavigateRequest{Path: path})
}

// Back pops the daemon's route history.
func (c *Client) Back(ctx context.Context) (daemon.State, error) {
	return c.postState(ctx, "/v1/back", struct{}{})
}

// Tap selects a page by index.
func (c *Client) Tap(ctx context.Context, index int) (daemon.State, error) {
	return c.postState(ctx, "/v1/tap", daemon.TapRequest{Index: index})
}

// TapPage selects a page by name.
func (c *Client) TapPage(ctx context.Context, name string) (daemon.State, error) {
	return c.postState(ctx, "/v1/tap", daemon.TapRequest{Page: name})
}

// Gesture sends one gesture step.
func (c *Client) Gesture(ctx context.Context, req daemon.GestureRequest) (daemon.GestureResponse, error) {
	var gr daemon.GestureResponse
	body, err := c.do(ctx, http.MethodPost, "/v1/gesture", req)
	if err != nil {
		return gr, err
	}
	if err := json.Unmarshal(body, &gr); err != nil {
		return gr, fmt.Errorf("client: parsing gesture response: %w", err)
	}
	return gr, nil
}

// Stream delivers events from /v1/stream to fn until ctx is canceled or the
// stream ends. The first event is always a snapshot.
func (c *Client) Stream(ctx context.Context, fn func(daemon.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/stream", nil)
	if err != nil {
		return fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodySize)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev daemon.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("client: parsing event: %w", err)
		}
		fn(ev)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("client: reading stream: %w", err)
	}
	return nil
}

func (c *Client) postState(ctx context.Context, path string, payload any) (daemon.State, error) {
	var st daemon.State
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("client: parsing state: %w", err)
	}
	return st, nil
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: reading response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := strings.TrimSpace(string(body))
	var er daemon.ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	switch resp.StatusCode {
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrConflict, msg)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	return nil, fmt.Errorf("client: unexpected status %d: %s", resp.StatusCode, msg)
}
