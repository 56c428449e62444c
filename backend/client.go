// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Package backend talks to the blackjack game engine and its TOTP
// authentication service. Both speak form-encoded POST requests and answer
// with "success" or "failed" on the first line of a plain-text body.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// Defaults for a Client.
const (
	DefaultBaseURL = "http://127.0.0.1:6595"
	DefaultTimeout = 5 * time.Second

	maxResponseSize = 1 << 20
)

const (
	registerPath = "/auth/register"
	loginPath    = "/auth/login"
	gamePath     = "/game/blackjack"

	actionPoll  = "poll"
	actionInput = "input"
)

// Credentials identify a logged-in player to the game engine.
type Credentials struct {
	Username string
	Token    string
}

// Authenticator registers players and exchanges TOTP codes for tokens.
type Authenticator interface {
	// Register creates an account and returns its TOTP enrolment QR code
	// as an encoded frame.
	Register(ctx context.Context, username string) (blackjackvm.EncodedFrame, error)

	// Login exchanges a TOTP code for credentials.
	Login(ctx context.Context, username, totp string) (Credentials, error)
}

// Engine serves raw game-state snapshots. The returned text is meant for
// blackjackvm.ParseSnapshot, which also reports engine rejections.
type Engine interface {
	// CurrentSnapshot returns the player's current game state.
	CurrentSnapshot(ctx context.Context, creds Credentials) (string, error)

	// ApplyMove submits one move token and returns the resulting state.
	ApplyMove(ctx context.Context, creds Credentials, move string) (string, error)
}

// Client implements Authenticator and Engine over HTTP.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger blackjackvm.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger blackjackvm.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client for the service rooted at baseURL.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, blackjackvm.NewError("backend.NewClient", blackjackvm.ErrConfiguration,
			fmt.Sprintf("invalid base URL %q", baseURL), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, blackjackvm.NewError("backend.NewClient", blackjackvm.ErrConfiguration,
			fmt.Sprintf("unsupported URL scheme %q", u.Scheme), nil)
	}
	if u.Host == "" {
		return nil, blackjackvm.NewError("backend.NewClient", blackjackvm.ErrConfiguration,
			"base URL has no host", nil)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: &blackjackvm.NoOpLogger{},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// Register implements Authenticator.
func (c *Client) Register(ctx context.Context, username string) (blackjackvm.EncodedFrame, error) {
	body, err := c.post(ctx, "backend.Register", registerPath, url.Values{"username": {username}})
	if err != nil {
		return "", err
	}
	payload, err := payloadLine("backend.Register", body)
	if err != nil {
		return "", err
	}
	return blackjackvm.EncodedFrame(payload), nil
}

// Login implements Authenticator.
func (c *Client) Login(ctx context.Context, username, totp string) (Credentials, error) {
	body, err := c.post(ctx, "backend.Login", loginPath, url.Values{
		"username": {username},
		"totp":     {totp},
	})
	if err != nil {
		return Credentials{}, err
	}
	token, err := payloadLine("backend.Login", body)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, Token: token}, nil
}

// CurrentSnapshot implements Engine.
func (c *Client) CurrentSnapshot(ctx context.Context, creds Credentials) (string, error) {
	return c.post(ctx, "backend.CurrentSnapshot", gamePath, url.Values{
		"username": {creds.Username},
		"auth":     {creds.Token},
		"action":   {actionPoll},
	})
}

// ApplyMove implements Engine.
func (c *Client) ApplyMove(ctx context.Context, creds Credentials, move string) (string, error) {
	return c.post(ctx, "backend.ApplyMove", gamePath, url.Values{
		"username": {creds.Username},
		"auth":     {creds.Token},
		"action":   {actionInput},
		"move":     {move},
	})
}

func (c *Client) post(ctx context.Context, op, path string, form url.Values) (string, error) {
	endpoint := c.base.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", blackjackvm.NewError(op, blackjackvm.ErrConnection, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", blackjackvm.Field{Key: "path", Value: path}, blackjackvm.Field{Key: "error", Value: err})
		return "", blackjackvm.NewError(op, blackjackvm.ErrConnection, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", blackjackvm.NewError(op, blackjackvm.ErrConnection, "failed to read response", err)
	}

	c.logger.Debug("Backend request",
		blackjackvm.Field{Key: "path", Value: path},
		blackjackvm.Field{Key: "status", Value: resp.StatusCode},
		blackjackvm.Field{Key: "elapsed", Value: time.Since(start)})

	if resp.StatusCode != http.StatusOK {
		return "", blackjackvm.NewError(op, blackjackvm.ErrConnection,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return string(data), nil
}

// payloadLine returns the line after a "success" status, or ErrRejected
// carrying the reason after a "failed" status.
func payloadLine(op, body string) (string, error) {
	lines := strings.SplitN(strings.TrimRight(body, "\r\n"), "\n", 3)
	status := strings.TrimSpace(lines[0])

	second := ""
	if len(lines) > 1 {
		second = strings.TrimRight(lines[1], "\r")
	}

	switch status {
	case blackjackvm.StatusSuccess:
		if second == "" {
			return "", blackjackvm.NewError(op, blackjackvm.ErrConnection, "success response without payload", nil)
		}
		return second, nil
	case blackjackvm.StatusFailed:
		return "", blackjackvm.NewError(op, blackjackvm.ErrRejected, strings.TrimSpace(second), nil)
	default:
		return "", blackjackvm.NewError(op, blackjackvm.ErrConnection, fmt.Sprintf("unknown response status %q", status), nil)
	}
}
