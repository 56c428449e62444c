// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"time"
)

// Defaults used when a config field is left zero.
const (
	DefaultIdleTimeout  = 60 * time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultTickRate     = 30
	DefaultDisplayScale = 1
	DefaultCanvasWidth  = 160
	DefaultCanvasHeight = 100
	maxTickRate         = 1000
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Logger receives session lifecycle and protocol messages.
	Logger Logger

	// IdleTimeout closes a session when no input line arrives in time.
	IdleTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// MaxLineLength bounds a single input line.
	MaxLineLength int
}

// ClientConfig configures RunClient.
type ClientConfig struct {
	// Logger receives connection and decode messages.
	Logger Logger

	// TickRate is the number of loop iterations per second.
	TickRate int

	// DisplayScale divides physical click coordinates into frame pixels.
	// Drags are sent unscaled.
	DisplayScale int

	// ReadChunkSize is the largest single read from the connection.
	ReadChunkSize int

	// MaxFrameSize bounds an unterminated frame in the receive buffer.
	MaxFrameSize int

	// WriteTimeout bounds each input line write. A send that cannot complete
	// in time is a fatal connection error.
	WriteTimeout time.Duration
}

// ServerOption represents a functional option for configuring a Server.
type ServerOption func(*ServerConfig)

// ClientOption represents a functional option for configuring RunClient.
type ClientOption func(*ClientConfig)

// WithServerLogger sets the logger for the server and its sessions.
func WithServerLogger(logger Logger) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Logger = logger
	}
}

// WithIdleTimeout sets how long a session waits for an input line.
func WithIdleTimeout(timeout time.Duration) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.IdleTimeout = timeout
	}
}

// WithFrameWriteTimeout sets the deadline for writing one frame.
func WithFrameWriteTimeout(timeout time.Duration) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.WriteTimeout = timeout
	}
}

// WithClientLogger sets the logger for the display loop.
func WithClientLogger(logger Logger) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.Logger = logger
	}
}

// WithTickRate sets the display loop frequency in ticks per second.
func WithTickRate(hz int) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.TickRate = hz
	}
}

// WithDisplayScale sets the physical to logical coordinate divisor.
func WithDisplayScale(scale int) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.DisplayScale = scale
	}
}

// WithReadChunkSize sets the largest single read from the connection.
func WithReadChunkSize(size int) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.ReadChunkSize = size
	}
}

// WithMaxFrameSize bounds an unterminated frame in the receive buffer.
func WithMaxFrameSize(size int) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.MaxFrameSize = size
	}
}

// WithInputWriteTimeout sets the deadline for sending one input line.
func WithInputWriteTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.WriteTimeout = timeout
	}
}

func (cfg *ServerConfig) defaults() {
	if cfg.Logger == nil {
		cfg.Logger = &NoOpLogger{}
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.MaxLineLength == 0 {
		cfg.MaxLineLength = 4096
	}
}

func (cfg *ServerConfig) validate() error {
	iv := newInputValidator()
	if err := iv.ValidateDuration("idle timeout", cfg.IdleTimeout); err != nil {
		return configurationError("ServerConfig.validate", "invalid idle timeout", err)
	}
	if err := iv.ValidateDuration("write timeout", cfg.WriteTimeout); err != nil {
		return configurationError("ServerConfig.validate", "invalid write timeout", err)
	}
	if err := iv.ValidateSize("max line length", cfg.MaxLineLength, 1<<20); err != nil {
		return configurationError("ServerConfig.validate", "invalid max line length", err)
	}
	return nil
}

func (cfg *ClientConfig) defaults() {
	if cfg.Logger == nil {
		cfg.Logger = &NoOpLogger{}
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.DisplayScale == 0 {
		cfg.DisplayScale = DefaultDisplayScale
	}
	if cfg.ReadChunkSize == 0 {
		cfg.ReadChunkSize = DefaultReadChunkSize
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
}

func (cfg *ClientConfig) validate() error {
	iv := newInputValidator()
	if err := iv.ValidateSize("tick rate", cfg.TickRate, maxTickRate); err != nil {
		return configurationError("ClientConfig.validate", "invalid tick rate", err)
	}
	if err := iv.ValidateScale(cfg.DisplayScale); err != nil {
		return configurationError("ClientConfig.validate", "invalid display scale", err)
	}
	if err := iv.ValidateSize("read chunk size", cfg.ReadChunkSize, 1<<24); err != nil {
		return configurationError("ClientConfig.validate", "invalid read chunk size", err)
	}
	if err := iv.ValidateSize("max frame size", cfg.MaxFrameSize, 0); err != nil {
		return configurationError("ClientConfig.validate", "invalid max frame size", err)
	}
	if err := iv.ValidateDuration("write timeout", cfg.WriteTimeout); err != nil {
		return configurationError("ClientConfig.validate", "invalid write timeout", err)
	}
	return nil
}
