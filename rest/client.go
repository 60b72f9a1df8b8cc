package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/awqef/sessiongate"
)

const (
	pathLogin          = "/auth/login"
	pathRegister       = "/auth/register"
	pathRefreshToken   = "/auth/refresh-token"
	pathValidateToken  = "/auth/validate-token"
	pathForgotPassword = "/auth/forgot-password"
	pathResetPassword  = "/auth/reset-password"
	pathProfile        = "/users/profile"
)

// Client is the HTTP implementation of [sessiongate.Backend].
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg sessiongate.BackendConfig, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpClient,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login describes the login operation and its observable behavior.
func (c *Client) Login(ctx context.Context, email, password string) (sessiongate.AuthPayload, error) {
	var payload sessiongate.AuthPayload
	err := c.call(ctx, http.MethodPost, pathLogin, "", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return sessiongate.AuthPayload{}, err
	}
	return payload, nil
}

// Register describes the register operation and its observable behavior.
func (c *Client) Register(ctx context.Context, email, password, name string) (sessiongate.AuthPayload, error) {
	var payload sessiongate.AuthPayload
	err := c.call(ctx, http.MethodPost, pathRegister, "", registerRequest{Email: email, Password: password, Name: name}, &payload)
	if err != nil {
		return sessiongate.AuthPayload{}, err
	}
	return payload, nil
}

// RefreshToken describes the refreshtoken operation and its observable behavior.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (sessiongate.AuthPayload, error) {
	var payload sessiongate.AuthPayload
	err := c.call(ctx, http.MethodPost, pathRefreshToken, "", refreshRequest{RefreshToken: refreshToken}, &payload)
	if err != nil {
		return sessiongate.AuthPayload{}, err
	}
	return payload, nil
}

// ValidateToken describes the validatetoken operation and its observable behavior.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) (sessiongate.UserSnapshot, error) {
	var snap sessiongate.UserSnapshot
	err := c.call(ctx, http.MethodGet, pathValidateToken, accessToken, nil, &snap)
	if err != nil {
		return sessiongate.UserSnapshot{}, err
	}
	return snap, nil
}

// ForgotPassword describes the forgotpassword operation and its observable behavior.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, pathForgotPassword, "", forgotPasswordRequest{Email: email}, nil)
}

// ResetPassword describes the resetpassword operation and its observable behavior.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.call(ctx, http.MethodPost, pathResetPassword, "", resetPasswordRequest{Token: token, NewPassword: newPassword}, nil)
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update sessiongate.ProfileUpdate) (sessiongate.UserSnapshot, error) {
	var snap sessiongate.UserSnapshot
	err := c.call(ctx, http.MethodPut, pathProfile, accessToken, update, &snap)
	if err != nil {
		return sessiongate.UserSnapshot{}, err
	}
	return snap, nil
}

func (c *Client) call(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if locale := sessiongate.LocaleFromContext(ctx); locale != "" {
		req.Header.Set("Accept-Language", locale)
	}
	requestID := sessiongate.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func statusError(path string, status int, body []byte) error {
	message := ""
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		message = er.Error
	}

	if status == http.StatusUnauthorized {
		if message != "" {
			return fmt.Errorf("%w: %s", sessiongate.ErrInvalidCredentials, message)
		}
		return sessiongate.ErrInvalidCredentials
	}

	if message != "" {
		return fmt.Errorf("%s: %s (status %d)", path, message, status)
	}
	return fmt.Errorf("%s: unexpected status %d", path, status)
}
