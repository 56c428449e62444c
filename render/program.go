// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Package render is the server-side blackjack program a session drives. It
// keeps the login and table state for one player, turns clicks and key
// presses into engine requests and draws every screen onto a small canvas.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	blackjackvm "github.com/AaronLi/BlackjackVM"
	"github.com/AaronLi/BlackjackVM/backend"
)

// Canvas size limits accepted by NewProgram.
const (
	MinWidth  = 160
	MinHeight = 100
	MaxWidth  = 640
	MaxHeight = 400

	DefaultRequestTimeout = 5 * time.Second

	totpDigits    = 6
	usernameWidth = 84
	usernameMax   = 20
	qrScale       = 2
)

// Config configures a Program.
type Config struct {
	SessionID string
	Auth      backend.Authenticator
	Engine    backend.Engine
	Logger    blackjackvm.Logger

	// Width and Height of the canvas. Zero selects the default size.
	Width  int
	Height int

	// RequestTimeout bounds each back-end call.
	RequestTimeout time.Duration
}

type screen int

const (
	screenLogin screen = iota
	screenQR
	screenTotp
	screenTable
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "login"
	case screenQR:
		return "qr"
	case screenTotp:
		return "totp"
	case screenTable:
		return "table"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Program implements blackjackvm.Application for one player. Its methods
// are called from a single session goroutine.
type Program struct {
	ctx     context.Context
	auth    backend.Authenticator
	engine  backend.Engine
	logger  blackjackvm.Logger
	timeout time.Duration
	width   int
	height  int

	username string
	creds    *backend.Credentials
	qr       *blackjackvm.PixelBuffer
	notice   string
	snapshot blackjackvm.SnapshotHolder

	usernameField *TextField
	totpField     *TextField
	layout        *layout
}

var _ blackjackvm.Application = (*Program)(nil)

// NewProgram returns a Program on the login screen. Back-end calls derive
// their context from ctx.
func NewProgram(ctx context.Context, cfg Config) (*Program, error) {
	if cfg.Auth == nil || cfg.Engine == nil {
		return nil, blackjackvm.NewError("render.NewProgram", blackjackvm.ErrConfiguration,
			"authenticator and engine are required", nil)
	}
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width, cfg.Height = blackjackvm.DefaultCanvasWidth, blackjackvm.DefaultCanvasHeight
	}
	if cfg.Width < MinWidth || cfg.Height < MinHeight || cfg.Width > MaxWidth || cfg.Height > MaxHeight {
		return nil, blackjackvm.NewError("render.NewProgram", blackjackvm.ErrConfiguration,
			fmt.Sprintf("canvas %dx%d outside %dx%d..%dx%d", cfg.Width, cfg.Height, MinWidth, MinHeight, MaxWidth, MaxHeight), nil)
	}
	if cfg.RequestTimeout < 0 {
		return nil, blackjackvm.NewError("render.NewProgram", blackjackvm.ErrConfiguration,
			"request timeout must not be negative", nil)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = &blackjackvm.NoOpLogger{}
	}
	logger := cfg.Logger.With(blackjackvm.Field{Key: "session", Value: cfg.SessionID})

	return &Program{
		ctx:           ctx,
		auth:          cfg.Auth,
		engine:        cfg.Engine,
		logger:        logger,
		timeout:       cfg.RequestTimeout,
		width:         cfg.Width,
		height:        cfg.Height,
		usernameField: NewTextField(usernameWidth, usernameMax, UsernameCharmap(), logger),
		totpField:     NewTextField(0, totpDigits, DigitCharmap(), logger),
		layout:        newLayout(cfg.Width, cfg.Height),
	}, nil
}

func (p *Program) screen() screen {
	switch {
	case p.creds != nil:
		return screenTable
	case p.qr != nil:
		return screenQR
	case p.username != "":
		return screenTotp
	default:
		return screenLogin
	}
}

// Render implements blackjackvm.Application.
func (p *Program) Render() *blackjackvm.PixelBuffer {
	c := NewCanvas(p.width, p.height)
	switch p.screen() {
	case screenLogin:
		p.drawLogin(c)
	case screenQR:
		p.drawQR(c)
	case screenTotp:
		p.drawTotp(c)
	case screenTable:
		p.drawTable(c)
	}
	return c.Frame()
}

// HandleClick implements blackjackvm.Application.
func (p *Program) HandleClick(x, y int) {
	switch p.screen() {
	case screenLogin:
		p.clickLogin(x, y)
	case screenQR:
		p.clickQR(x, y)
	case screenTotp:
		p.clickTotp(x, y)
	case screenTable:
		p.clickTable(x, y)
	}
}

// HandleKey implements blackjackvm.Application.
func (p *Program) HandleKey(code, mod int) {
	switch p.screen() {
	case screenLogin:
		if code == blackjackvm.KeyReturn {
			p.startLogin()
			return
		}
		p.usernameField.HandleKey(code, mod)
	case screenTotp:
		if code == blackjackvm.KeyReturn {
			p.submitTotp()
			return
		}
		p.totpField.HandleKey(code, mod)
	default:
		p.logger.Debug("Key ignored", blackjackvm.Field{Key: "screen", Value: p.screen()}, blackjackvm.Field{Key: "code", Value: code})
	}
}

// HandleDrag implements blackjackvm.Application. No screen uses relative
// pointer movement.
func (p *Program) HandleDrag(dx, dy int) {}

func (p *Program) request() (context.Context, context.CancelFunc) {
	return context.WithTimeout(p.ctx, p.timeout)
}

// logout returns to the login screen.
func (p *Program) logout(reason string) {
	p.logger.Info("Logged out", blackjackvm.Field{Key: "reason", Value: reason}, blackjackvm.Field{Key: "user", Value: p.username})
	p.creds = nil
	p.username = ""
	p.qr = nil
	p.snapshot.Clear()
	p.usernameField.Clear()
	p.totpField.Clear()
}

// noticeFor turns a back-end error into the text shown to the player.
func noticeFor(err error) string {
	var e *blackjackvm.Error
	if errors.As(err, &e) && e.Code == blackjackvm.ErrRejected && e.Message != "" {
		return e.Message
	}
	if blackjackvm.IsError(err, blackjackvm.ErrRejected) {
		return "Request rejected"
	}
	return "Server unavailable"
}
