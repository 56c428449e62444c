// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// countingApp renders a 2x1 frame whose red channel tracks the number of
// events it has handled.
type countingApp struct {
	mu         sync.Mutex
	events     []InputCommand
	panicOnKey bool
}

func (a *countingApp) Render() *PixelBuffer {
	a.mu.Lock()
	defer a.mu.Unlock()

	pb := NewPixelBuffer(2, 1)
	pb.Fill(RGB{R: uint8(len(a.events) * 50)})
	return pb
}

func (a *countingApp) HandleClick(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ClickCommand{X: x, Y: y})
}

func (a *countingApp) HandleKey(code, mod int) {
	if a.panicOnKey {
		panic("key handler failed")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, KeyCommand{Code: code, Mod: mod})
}

func (a *countingApp) HandleDrag(dx, dy int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, DragCommand{DX: dx, DY: dy})
}

func (a *countingApp) handled() []InputCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]InputCommand(nil), a.events...)
}

func frameFor(events int) string {
	pb := NewPixelBuffer(2, 1)
	pb.Fill(RGB{R: uint8(events * 50)})
	return string(Encode(pb)) + "\n"
}

func startSession(t *testing.T, app Application, cfg *ServerConfig) (net.Conn, *bufio.Reader, chan error) {
	t.Helper()
	cfg.defaults()

	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	done := make(chan error, 1)
	go func() {
		defer server.Close()
		done <- NewSession("test", server, app, cfg, nil).Run()
	}()
	return client, bufio.NewReader(client), done
}

func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	return line
}

func TestServer_SessionSendsInitialFrame(t *testing.T) {
	_, r, _ := startSession(t, &countingApp{}, &ServerConfig{})

	if got := readFrame(t, r); got != "2 !!!!!!\n" {
		t.Errorf("initial frame = %q, want %q", got, "2 !!!!!!\n")
	}
}

func TestServer_SessionAppliesInput(t *testing.T) {
	app := &countingApp{}
	conn, r, _ := startSession(t, app, &ServerConfig{})
	readFrame(t, r)

	lines := []string{"click 40 25\n", "key 97 1\n", "drag -2 3\n"}
	for i, line := range lines {
		if _, err := conn.Write([]byte(line)); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
		if got, want := readFrame(t, r), frameFor(i+1); got != want {
			t.Errorf("frame after %q = %q, want %q", line, got, want)
		}
	}

	want := []InputCommand{
		ClickCommand{X: 40, Y: 25},
		KeyCommand{Code: 'a', Mod: ModShift},
		DragCommand{DX: -2, DY: 3},
	}
	got := app.handled()
	if len(got) != len(want) {
		t.Fatalf("handled %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestServer_SessionIgnoresBadInput(t *testing.T) {
	app := &countingApp{}
	conn, r, _ := startSession(t, app, &ServerConfig{})
	readFrame(t, r)

	for _, line := range []string{"scroll 1 2\n", "click 1\n"} {
		if _, err := conn.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
		if got := readFrame(t, r); got != frameFor(0) {
			t.Errorf("frame after %q = %q, want unchanged frame", line, got)
		}
	}
	if n := len(app.handled()); n != 0 {
		t.Errorf("application handled %d events, want 0", n)
	}
}

func TestServer_SessionDiscardsOversizedLine(t *testing.T) {
	app := &countingApp{}
	conn, r, _ := startSession(t, app, &ServerConfig{MaxLineLength: 16})
	readFrame(t, r)

	go func() {
		_, _ = conn.Write([]byte("click " + strings.Repeat("1", 40) + " 2\nclick 3 4\n"))
	}()

	if got := readFrame(t, r); got != frameFor(1) {
		t.Errorf("frame = %q, want %q", got, frameFor(1))
	}
	got := app.handled()
	if len(got) != 1 || got[0] != (ClickCommand{X: 3, Y: 4}) {
		t.Errorf("handled %v, want only the short click", got)
	}
}

func TestServer_SessionPeerClose(t *testing.T) {
	conn, r, done := startSession(t, &countingApp{}, &ServerConfig{})
	readFrame(t, r)
	conn.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on peer close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after peer close")
	}
}

func TestServer_SessionIdleTimeout(t *testing.T) {
	_, r, done := startSession(t, &countingApp{}, &ServerConfig{IdleTimeout: 30 * time.Millisecond})
	readFrame(t, r)

	select {
	case err := <-done:
		if !IsError(err, ErrTimeout) {
			t.Errorf("Run() error = %v, want timeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not time out")
	}
}

func TestServer_NewServerValidation(t *testing.T) {
	if _, err := NewServer(nil); !IsError(err, ErrConfiguration) {
		t.Errorf("NewServer(nil) error = %v, want configuration error", err)
	}

	factory := func(string) (Application, error) { return &countingApp{}, nil }
	if _, err := NewServer(factory, WithIdleTimeout(-time.Second)); !IsError(err, ErrConfiguration) {
		t.Errorf("NewServer(negative timeout) error = %v, want configuration error", err)
	}
	if _, err := NewServer(factory, WithFrameWriteTimeout(-1)); !IsError(err, ErrConfiguration) {
		t.Errorf("NewServer(negative write timeout) error = %v, want configuration error", err)
	}

	srv, err := NewServer(factory, WithServerLogger(&NoOpLogger{}))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.config.IdleTimeout != DefaultIdleTimeout || srv.config.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("defaults = %+v", srv.config)
	}
}

func TestServer_ServeIsolatesSessions(t *testing.T) {
	var mu sync.Mutex
	ids := map[string]*countingApp{}
	factory := func(id string) (Application, error) {
		mu.Lock()
		defer mu.Unlock()
		app := &countingApp{panicOnKey: len(ids) == 0}
		ids[id] = app
		return app, nil
	}

	srv, err := NewServer(factory)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error listening: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	first, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer first.Close()
	firstReader := bufio.NewReader(first)
	readFrame(t, firstReader)

	// The first session panics on a key press; only its connection closes.
	if _, err := first.Write([]byte("key 13 0\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := firstReader.ReadString('\n'); err == nil {
		t.Error("panicking session kept its connection open")
	}

	second, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer second.Close()
	secondReader := bufio.NewReader(second)
	readFrame(t, secondReader)

	if _, err := second.Write([]byte("click 1 1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readFrame(t, secondReader); got != frameFor(1) {
		t.Errorf("second session frame = %q, want %q", got, frameFor(1))
	}

	mu.Lock()
	if len(ids) != 2 {
		t.Errorf("factory called for %d sessions, want 2", len(ids))
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if _, err := secondReader.ReadString('\n'); err == nil {
		t.Error("session connection still open after shutdown")
	}
}

func TestServer_ServeListenerFailure(t *testing.T) {
	srv, err := NewServer(func(string) (Application, error) { return &countingApp{}, nil })
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error listening: %s", err)
	}
	ln.Close()

	err = srv.Serve(context.Background(), ln)
	if !IsError(err, ErrConnection) || !errors.Is(err, net.ErrClosed) {
		t.Errorf("Serve() error = %v, want connection error wrapping net.ErrClosed", err)
	}
}

// recordingLogger keeps every message, including those of derived loggers.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Debug(msg string, fields ...Field) { l.record(msg) }
func (l *recordingLogger) Info(msg string, fields ...Field)  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, fields ...Field)  { l.record(msg) }
func (l *recordingLogger) Error(msg string, fields ...Field) { l.record(msg) }
func (l *recordingLogger) With(fields ...Field) Logger       { return l }

func (l *recordingLogger) recorded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *recordingLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == msg {
			return true
		}
	}
	return false
}

func serveInBackground(t *testing.T, srv *Server) (net.Listener, context.CancelFunc, chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error listening: %s", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()
	return ln, cancel, served
}

func waitServed(t *testing.T, served chan error) {
	t.Helper()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_ShutdownLogsShutdown(t *testing.T) {
	logger := &recordingLogger{}
	srv, err := NewServer(func(string) (Application, error) { return &countingApp{}, nil },
		WithServerLogger(logger))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ln, cancel, served := serveInBackground(t, srv)

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readFrame(t, bufio.NewReader(conn))

	cancel()
	waitServed(t, served)

	if !logger.has("Session closed on shutdown") {
		t.Errorf("messages = %q, want shutdown message", logger.recorded())
	}
	if logger.has("Session ended by peer") {
		t.Error("shutdown was reported as a peer close")
	}
}

func TestServer_FactoryErrorClosesConnection(t *testing.T) {
	logger := &recordingLogger{}
	srv, err := NewServer(func(string) (Application, error) {
		return nil, errors.New("engine unavailable")
	}, WithServerLogger(logger))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ln, cancel, served := serveInBackground(t, srv)
	defer func() {
		cancel()
		waitServed(t, served)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if line, err := bufio.NewReader(conn).ReadString('\n'); err == nil {
		t.Errorf("received %q, want the connection closed without a frame", line)
	}
	if !logger.has("Failed to create session application") {
		t.Errorf("messages = %q, want factory failure logged", logger.recorded())
	}
	if logger.has("Session started") {
		t.Error("session started without an application")
	}
}
