package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/awqef/sessiongate/internal/reqctx"
)

// SessionSource is the gateway's view of the session manager: where the
// current access token comes from, how a refresh is triggered, and where
// authorization failures are reported. sessiongate.Manager satisfies it.
type SessionSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SignalUnauthorized(reason string)
	Expire(ctx context.Context, reason string)
}

// Config defines a public type used by sessiongate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client dispatches authenticated requests and transparently recovers from
// expired-token failures through a single shared refresh.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config  Config
	http    *http.Client
	session SessionSource

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
}

type refreshOutcome struct {
	token string
	err   error
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A nil httpClient gets a dedicated one bounded by cfg.Timeout. An injected
// client is used as-is when it carries its own Timeout; otherwise a copy
// bounded by cfg.Timeout is used in its place.
func NewClient(cfg Config, session SessionSource, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway base URL required")
	}
	if session == nil {
		return nil, errors.New("gateway session source required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	} else if httpClient.Timeout <= 0 {
		// An injected client without its own deadline still gets the
		// configured one; clone so the caller's client stays untouched.
		bounded := *httpClient
		bounded.Timeout = cfg.Timeout
		httpClient = &bounded
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		session: session,
	}, nil
}

// Do sends one authenticated request and decodes the JSON response into
// out (skipped when out is nil or the body is empty).
//
// On a 401 the unauthorized signal fires unconditionally, then the request
// either performs the refresh or joins the pending queue of an in-flight
// one, and is replayed once with the new token. Refresh failure rejects the
// request with [ErrAuthExpired]. Nothing else is ever retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = data
	}

	token, _ := c.session.AccessToken(ctx)

	status, data, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.session.SignalUnauthorized(method + " " + path)

		newToken, rerr := c.recoverToken(ctx)
		if rerr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ErrAuthExpired)
		}

		status, data, err = c.send(ctx, method, path, payload, newToken)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// The fresh token was rejected too; nothing left to try.
			c.session.SignalUnauthorized(method + " " + path)
			c.session.Expire(ctx, "refreshed token rejected")
			return fmt.Errorf("%s %s: %w", method, path, ErrAuthExpired)
		}
	}

	if status < 200 || status > 299 {
		return &RequestError{
			Status: status,
			URL:    c.url(path),
			Body:   truncate(string(data), 512),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", c.url(path), err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post describes the post operation and its observable behavior.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put describes the put operation and its observable behavior.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete describes the delete operation and its observable behavior.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// recoverToken either performs the refresh (leader) or joins the pending
// queue of the in-flight one. Waiters are released in enqueue order; all of
// them observe the same outcome as the leader.
func (c *Client) recoverToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	token, err := c.session.Refresh(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	if err != nil {
		c.session.Expire(ctx, "refresh failed")
	}

	for _, ch := range waiters {
		ch <- refreshOutcome{token: token, err: err}
	}

	return token, err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	requestID := reqctx.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if locale := reqctx.Locale(ctx); locale != "" {
		req.Header.Set("Accept-Language", locale)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{URL: c.url(path), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{URL: c.url(path), Err: err}
	}

	return resp.StatusCode, data, nil
}

func (c *Client) url(path string) string {
	base := strings.TrimSuffix(c.config.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
