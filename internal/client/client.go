// Package client talks to the Inkwell HTTP API on behalf of the article
// editor: signing in, requesting signed upload locations, transferring image
// bytes and submitting articles.
package client

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
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Credentials holds the bearer token of the signed-in author.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

func (c *Credentials) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Credentials) Clear() {
	c.Set("")
}

func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SignedIn reports whether a token is present.
func (c *Credentials) SignedIn() bool {
	return c.Token() != ""
}

// Option configures a client.
type Option func(*base)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(b *base) {
		b.http = hc
	}
}

type base struct {
	baseURL string
	creds   *Credentials
	http    *http.Client
}

func newBase(baseURL string, creds *Credentials, opts []Option) base {
	b := base{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.creds == nil {
		b.creds = &Credentials{}
	}
	return b
}

// doJSON sends in as JSON and decodes the response into out. Non-2xx
// responses become a *StatusError carrying the server's error message.
func (b *base) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := b.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	if json.Unmarshal(raw, &payload) == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// AuthClient signs authors in.
type AuthClient struct {
	base
}

func NewAuthClient(baseURL string, creds *Credentials, opts ...Option) *AuthClient {
	return &AuthClient{base: newBase(baseURL, creds, opts)}
}

// Login exchanges credentials for a token and stores it.
func (c *AuthClient) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login response has no token")
	}
	c.creds.Set(resp.Token)
	return nil
}

// Logout forgets the stored token.
func (c *AuthClient) Logout() {
	c.creds.Clear()
}
