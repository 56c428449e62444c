// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"context"
	"errors"
	"net"
	"time"
)

// Display is the local output and input surface of the client.
type Display interface {
	// PollInput returns every input event gathered since the last call
	// without blocking. It returns ErrDisplayClosed once the user quits.
	// Click coordinates are in physical display pixels; the client maps
	// them onto the frame using its display scale.
	PollInput() ([]InputCommand, error)

	// Show presents a decoded frame.
	Show(pb *PixelBuffer) error

	// Disconnected tells the user the connection ended.
	Disconnected(err error)
}

// ClientConn is the client end of one connection: it sends input lines and
// reassembles frames.
type ClientConn struct {
	c      net.Conn
	config *ClientConfig
	logger Logger

	reader *ChunkReader
	buffer *ReceiveBuffer
}

// NewClientConn wraps an established connection. Reading starts at once.
func NewClientConn(c net.Conn, options ...ClientOption) (*ClientConn, error) {
	cfg := &ClientConfig{}
	for _, option := range options {
		option(cfg)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &ClientConn{
		c:      c,
		config: cfg,
		logger: cfg.Logger,
		reader: NewChunkReader(c, cfg.ReadChunkSize),
		buffer: NewReceiveBuffer(cfg.MaxFrameSize),
	}, nil
}

// Close terminates the connection. It is safe to call more than once.
func (c *ClientConn) Close() error {
	c.reader.Stop()
	err := c.c.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Send writes one input command. Clicks are converted from physical to
// logical coordinates with the configured display scale. A write that
// cannot complete before the configured timeout is a connection error;
// input is never dropped silently.
func (c *ClientConn) Send(cmd InputCommand) error {
	switch click := cmd.(type) {
	case ClickCommand:
		click.X, click.Y = ToLogical(click.X, click.Y, c.config.DisplayScale)
		cmd = click
	case *ClickCommand:
		if click != nil {
			x, y := ToLogical(click.X, click.Y, c.config.DisplayScale)
			cmd = ClickCommand{X: x, Y: y}
		}
	}
	line := EncodeCommand(cmd)
	if line == "" {
		return validationError("ClientConn.Send", "unsupported input command", nil)
	}

	if err := c.c.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
		return connectionError("ClientConn.Send", "failed to set write deadline", err)
	}
	if _, err := c.c.Write([]byte(line)); err != nil {
		c.logger.Error("Failed to send input", Field{Key: "command", Value: cmd.Name()}, Field{Key: "error", Value: err})
		return connectionError("ClientConn.Send", "failed to send input line", err)
	}

	c.logger.Debug("Sent input", Field{Key: "command", Value: cmd.Name()})
	return nil
}

// Frames returns every frame completed since the last call, oldest first,
// without blocking. A non-nil error means the stream has ended.
func (c *ClientConn) Frames() ([]EncodedFrame, error) {
	chunks, readErr := c.reader.Drain()

	var frames []EncodedFrame
	for _, chunk := range chunks {
		got, err := c.buffer.Poll(chunk)
		frames = append(frames, got...)
		if err != nil {
			c.logger.Warn("Dropping oversized frame", Field{Key: "error", Value: err})
		}
	}

	if readErr != nil {
		return frames, connectionError("ClientConn.Frames", "connection closed", readErr)
	}
	return frames, nil
}

// RunClient drives the display loop over conn until the display closes
// (nil), ctx is cancelled, or the connection fails. Each tick it sends all
// pending input, collects received frames and shows only the newest one.
func RunClient(ctx context.Context, conn net.Conn, display Display, options ...ClientOption) error {
	c, err := NewClientConn(conn, options...)
	if err != nil {
		return err
	}
	defer c.Close()

	interval := time.Second / time.Duration(c.config.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("Starting display loop",
		Field{Key: "tick_rate", Value: c.config.TickRate},
		Field{Key: "remote", Value: conn.RemoteAddr().String()})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Display loop cancelled")
			return ctx.Err()
		case <-ticker.C:
		}

		done, err := c.tick(display)
		if err != nil {
			c.logger.Error("Display loop ended", Field{Key: "error", Value: err})
			display.Disconnected(err)
			return err
		}
		if done {
			c.logger.Info("Display closed")
			return nil
		}
	}
}

func (c *ClientConn) tick(display Display) (bool, error) {
	cmds, inputErr := display.PollInput()
	for _, cmd := range cmds {
		if err := c.Send(cmd); err != nil {
			return false, err
		}
	}
	if errors.Is(inputErr, ErrDisplayClosed) {
		return true, nil
	}
	if inputErr != nil {
		return false, inputErr
	}

	frames, readErr := c.Frames()
	if len(frames) > 0 {
		if skipped := len(frames) - 1; skipped > 0 {
			c.logger.Debug("Skipping stale frames", Field{Key: "count", Value: skipped})
		}
		c.show(display, frames[len(frames)-1])
	}
	return false, readErr
}

func (c *ClientConn) show(display Display, frame EncodedFrame) {
	pb, err := Decode(frame, 1)
	if err != nil {
		c.logger.Warn("Dropping undecodable frame", Field{Key: "error", Value: err})
		return
	}
	if err := display.Show(pb); err != nil {
		c.logger.Warn("Display failed to show frame", Field{Key: "error", Value: err})
	}
}
