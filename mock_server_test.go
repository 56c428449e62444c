// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// MockFrameServer is a minimal frame server for client tests. It writes a
// fixed burst of frames to every connection and records input lines.
type MockFrameServer struct {
	listener net.Listener
	addr     string
	wg       sync.WaitGroup
	stop     chan struct{}

	// Frames are written in a single write when a client connects.
	Frames []EncodedFrame
	// Reply, when set, is sent after every input line.
	Reply EncodedFrame
	// CloseAfterFrames closes the connection once Frames are written.
	CloseAfterFrames bool

	// Lines receives every input line read from any client.
	Lines chan string
}

// NewMockFrameServer creates a mock server that sends one black frame.
func NewMockFrameServer() *MockFrameServer {
	return &MockFrameServer{
		Frames: []EncodedFrame{"1 !!!"},
		Lines:  make(chan string, 64),
		stop:   make(chan struct{}),
	}
}

// Start starts the mock server on a random available port.
func (m *MockFrameServer) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	m.listener = listener
	m.addr = listener.Addr().String()

	m.wg.Add(1)
	go m.serve()

	return nil
}

// Stop stops the mock server.
func (m *MockFrameServer) Stop() {
	close(m.stop)
	if m.listener != nil {
		m.listener.Close()
	}
	m.wg.Wait()
}

// Addr returns the server address.
func (m *MockFrameServer) Addr() string {
	return m.addr
}

func (m *MockFrameServer) serve() {
	defer m.wg.Done()

	for {
		conn, err := m.listener.Accept()
		if err != nil {
			select {
			case <-m.stop:
				return
			default:
				continue
			}
		}

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.handleConnection(conn)
		}()
	}
}

func (m *MockFrameServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return
	}

	var burst []byte
	for _, f := range m.Frames {
		burst = append(burst, f...)
		burst = append(burst, FrameDelimiter)
	}
	if len(burst) > 0 {
		if _, err := conn.Write(burst); err != nil {
			return
		}
	}
	if m.CloseAfterFrames {
		return
	}

	go func() {
		<-m.stop
		conn.Close()
	}()

	fw := NewFrameWriter(conn)
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		select {
		case m.Lines <- line:
		default:
		}
		if m.Reply != "" {
			if err := fw.WriteFrame(m.Reply); err != nil {
				return
			}
		}
	}
}
