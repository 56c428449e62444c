// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Package blackjackvm implements a text-based remote framebuffer protocol.
//
// The server renders every frame off-screen, encodes it as one line of
// printable ASCII and streams it over a TCP connection. The client decodes
// each line back into pixels and only sends raw input events upstream.
//
// # Frames
//
// A frame is "<width> <symbols>\n". Each pixel is three symbols (red, green,
// blue) from the range '!' to '~'; the height follows from the payload length.
//
//	frame := blackjackvm.Encode(pb)
//	pb, err := blackjackvm.Decode(frame, 1)
//
// Frames are lossy: each channel is quantised to 94 levels.
//
// # Serving
//
//	srv, err := blackjackvm.NewServer(func(id string) (blackjackvm.Application, error) {
//		return newProgram(id)
//	}, blackjackvm.WithIdleTimeout(60*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//	ln, _ := net.Listen("tcp", "localhost:9999")
//	err = srv.Serve(ctx, ln)
//
// # Viewing
//
//	conn, err := net.Dial("tcp", "localhost:9999")
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = blackjackvm.RunClient(ctx, conn, display, blackjackvm.WithTickRate(30))
//
// # Input
//
// Input travels as text lines: "key <code> <mod>", "click <x> <y>" and
// "drag <dx> <dy>". Coordinates are logical canvas pixels.
//
// # Game state
//
// ParseSnapshot validates the line-oriented game-state text produced by the
// game engine and exposes hands, bets and legal moves.
//
// # Error Handling
//
//	if blackjackvm.IsError(err, blackjackvm.ErrMalformedFrame) {
//		log.Printf("dropping frame: %v", err)
//	}

package blackjackvm
