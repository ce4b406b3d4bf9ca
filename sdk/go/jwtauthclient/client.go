// Package jwtauthclient is a Go client for the jwtauth HTTP API.
package jwtauthclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotLoggedIn is returned by calls that need a token before Login succeeded.
var ErrNotLoggedIn = errors.New("jwtauthclient: not logged in")

// APIError is an error envelope returned by the server.
type APIError struct {
	StatusCode  int
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jwtauth: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Token is the result of a successful login.
type Token struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"-"`
}

// User is the public view of an account.
type User struct {
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// Client talks to one jwtauth server and remembers the token of the last login.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token *Token
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. "https://auth.example.com".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	var tok Token
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/authenticate", body, false, &tok); err != nil {
		return nil, err
	}
	tok.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	c.mu.Lock()
	c.token = &tok
	c.mu.Unlock()
	return &tok, nil
}

// Signup creates an account holding ROLE_USER.
func (c *Client) Signup(ctx context.Context, username, password, nickname string) (*User, error) {
	var user User
	body := map[string]string{"username": username, "password": password, "nickname": nickname}
	if err := c.do(ctx, http.MethodPost, "/api/signup", body, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account of the logged in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// User returns any account. The server only allows this for ROLE_ADMIN.
func (c *Client) User(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user/"+url.PathEscape(username), nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Token returns the token of the last successful login, if any.
func (c *Client) Token() (*Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil, false
	}
	tok := *c.token
	return &tok, true
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, auth bool, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		tok, ok := c.Token()
		if !ok {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("jwtauth: decode %s %s response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
