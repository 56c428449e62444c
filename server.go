// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Application is the server-side program a session drives. It owns all
// render and game state for one connection.
type Application interface {
	// Render draws the current state and returns the frame to send.
	Render() *PixelBuffer

	// HandleClick handles a click at logical coordinates.
	HandleClick(x, y int)

	// HandleKey handles a key press.
	HandleKey(code, mod int)

	// HandleDrag handles a relative pointer movement.
	HandleDrag(dx, dy int)
}

// ApplicationFactory creates the Application for a new session. An error
// closes the connection before any frame is sent.
type ApplicationFactory func(sessionID string) (Application, error)

// Server accepts connections and runs one isolated Session per connection.
type Server struct {
	factory ApplicationFactory
	config  *ServerConfig
	logger  Logger

	wg sync.WaitGroup
}

// NewServer creates a Server that builds each session's Application with factory.
func NewServer(factory ApplicationFactory, options ...ServerOption) (*Server, error) {
	if factory == nil {
		return nil, configurationError("NewServer", "application factory is required", nil)
	}

	cfg := &ServerConfig{}
	for _, option := range options {
		option(cfg)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Server{
		factory: factory,
		config:  cfg,
		logger:  cfg.Logger,
	}, nil
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails. Cancelling ctx closes the listener and every open session; Serve
// returns once all sessions have ended.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()
	defer s.wg.Wait()

	s.logger.Info("Accepting connections", Field{Key: "address", Value: ln.Addr().String()})

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Server stopped", Field{Key: "reason", Value: ctx.Err()})
				return nil
			}
			if isTimeout(err) {
				s.logger.Warn("Temporary accept error", Field{Key: "error", Value: err})
				continue
			}
			s.logger.Error("Accept failed", Field{Key: "error", Value: err})
			return connectionError("Server.Serve", "accept failed", err)
		}

		id := uuid.NewString()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, id, c)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, id string, c net.Conn) {
	logger := s.logger.With(
		Field{Key: "session", Value: id},
		Field{Key: "remote", Value: c.RemoteAddr().String()})

	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
	defer stop()
	defer c.Close()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Session panicked",
				Field{Key: "panic", Value: fmt.Sprint(r)},
				Field{Key: "stack", Value: string(debug.Stack())})
		}
	}()

	app, err := s.factory(id)
	if err != nil {
		logger.Error("Failed to create session application", Field{Key: "error", Value: err})
		return
	}

	logger.Info("Session started")
	err = NewSession(id, c, app, s.config, logger).Run()

	switch {
	case ctx.Err() != nil:
		logger.Info("Session closed on shutdown")
	case err == nil:
		logger.Info("Session ended by peer")
	case IsError(err, ErrTimeout):
		logger.Info("Session idle timeout", Field{Key: "timeout", Value: s.config.IdleTimeout})
	default:
		logger.Warn("Session ended with error", Field{Key: "error", Value: err})
	}
}

// Session is the server side of one connection: it reads input lines,
// applies them to its Application and answers each with a fresh frame.
type Session struct {
	ID string

	conn   net.Conn
	app    Application
	reader *bufio.Reader
	writer *FrameWriter
	config *ServerConfig
	logger Logger
}

// NewSession wires an Application to a connection. cfg must have its
// defaults applied.
func NewSession(id string, conn net.Conn, app Application, cfg *ServerConfig, logger Logger) *Session {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &Session{
		ID:     id,
		conn:   conn,
		app:    app,
		reader: bufio.NewReaderSize(conn, cfg.MaxLineLength),
		writer: NewFrameWriter(conn),
		config: cfg,
		logger: logger,
	}
}

// Run sends the initial frame and then serves input lines until the peer
// closes the connection (nil), the idle timeout fires (ErrTimeout) or an
// I/O error occurs (ErrConnection).
func (s *Session) Run() error {
	if err := s.sendFrame(); err != nil {
		return err
	}

	for {
		line, err := s.readLine()
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		s.apply(line)

		if err := s.sendFrame(); err != nil {
			return err
		}
	}
}

// readLine returns the next input line. Lines longer than the configured
// maximum are discarded and reported as an empty line.
func (s *Session) readLine() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout)); err != nil {
		return "", connectionError("Session.readLine", "failed to set read deadline", err)
	}

	line, err := s.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		s.logger.Warn("Discarding oversized input line", Field{Key: "max", Value: s.config.MaxLineLength})
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = s.reader.ReadSlice('\n')
		}
		if err != nil {
			return "", s.readError(err)
		}
		return "", nil
	}
	if err != nil {
		return "", s.readError(err)
	}
	return string(line), nil
}

func (s *Session) readError(err error) error {
	switch {
	case isClosed(err):
		return err
	case isTimeout(err):
		return timeoutError("Session.readLine", fmt.Sprintf("no input within %v", s.config.IdleTimeout), err)
	default:
		return connectionError("Session.readLine", "failed to read input line", err)
	}
}

// apply decodes one line and forwards it to the application. Lines that
// do not decode are logged and ignored.
func (s *Session) apply(line string) {
	cmd, err := DecodeCommand(line)
	if err != nil {
		s.logger.Debug("Ignoring input line", Field{Key: "error", Value: err})
		return
	}

	switch c := cmd.(type) {
	case KeyCommand:
		s.app.HandleKey(c.Code, c.Mod)
	case ClickCommand:
		s.app.HandleClick(c.X, c.Y)
	case DragCommand:
		s.app.HandleDrag(c.DX, c.DY)
	}
}

func (s *Session) sendFrame() error {
	frame := Encode(s.app.Render())

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return connectionError("Session.sendFrame", "failed to set write deadline", err)
	}
	return s.writer.WriteFrame(frame)
}
