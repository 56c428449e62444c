// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"testing"
)

func TestInput_DecodeCommand(t *testing.T) {
	tests := []struct {
		line string
		want InputCommand
	}{
		{"click 40 25\n", ClickCommand{X: 40, Y: 25}},
		{"click 40 25", ClickCommand{X: 40, Y: 25}},
		{"click 40 25\r\n", ClickCommand{X: 40, Y: 25}},
		{"key 97 0\n", KeyCommand{Code: 'a', Mod: ModNone}},
		{"key 1073741903 1\n", KeyCommand{Code: KeyRight, Mod: ModShift}},
		{"drag -3 7\n", DragCommand{DX: -3, DY: 7}},
		{"  drag  0   0 \n", DragCommand{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := DecodeCommand(tt.line)
			if err != nil {
				t.Fatalf("DecodeCommand(%q) error = %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("DecodeCommand(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestInput_DecodeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		code ErrorCode
	}{
		{"empty line", "\n", ErrUnknownCommand},
		{"unknown command", "scroll 1 2\n", ErrUnknownCommand},
		{"upper case", "CLICK 1 2\n", ErrUnknownCommand},
		{"missing field", "click 40\n", ErrMalformedCommand},
		{"extra field", "click 1 2 3\n", ErrMalformedCommand},
		{"non-integer", "click a 2\n", ErrMalformedCommand},
		{"float", "drag 1.5 2\n", ErrMalformedCommand},
		{"out of range", "key 4294967296 0\n", ErrMalformedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand(tt.line)
			if !IsError(err, tt.code) {
				t.Errorf("DecodeCommand(%q) error = %v, want %v", tt.line, err, tt.code)
			}
		})
	}
}

func TestInput_EncodeCommand(t *testing.T) {
	tests := []struct {
		cmd  InputCommand
		want string
	}{
		{ClickCommand{X: 40, Y: 25}, "click 40 25\n"},
		{KeyCommand{Code: KeyReturn, Mod: ModNone}, "key 13 0\n"},
		{DragCommand{DX: -1, DY: 4}, "drag -1 4\n"},
		{&ClickCommand{X: 1, Y: 2}, "click 1 2\n"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := EncodeCommand(tt.cmd); got != tt.want {
			t.Errorf("EncodeCommand(%#v) = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestInput_RoundTrip(t *testing.T) {
	cmds := []InputCommand{
		KeyCommand{Code: KeyKeypad0, Mod: ModShift | ModCtrl},
		KeyCommand{Code: KeyBackspace},
		ClickCommand{X: 159, Y: 99},
		DragCommand{DX: -20, DY: 0},
	}

	for _, cmd := range cmds {
		got, err := DecodeCommand(EncodeCommand(cmd))
		if err != nil {
			t.Fatalf("DecodeCommand(EncodeCommand(%#v)) error = %v", cmd, err)
		}
		if got != cmd {
			t.Errorf("round trip of %#v = %#v", cmd, got)
		}
		if got.Name() != cmd.Name() {
			t.Errorf("Name() = %q, want %q", got.Name(), cmd.Name())
		}
	}
}

func TestInput_ToLogical(t *testing.T) {
	tests := []struct {
		x, y, scale int
		wx, wy      int
	}{
		{80, 50, 1, 80, 50},
		{161, 99, 2, 80, 49},
		{5, 5, 0, 5, 5},
		{-1, -3, 2, -1, -2},
	}

	for _, tt := range tests {
		gx, gy := ToLogical(tt.x, tt.y, tt.scale)
		if gx != tt.wx || gy != tt.wy {
			t.Errorf("ToLogical(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.x, tt.y, tt.scale, gx, gy, tt.wx, tt.wy)
		}
	}
}
