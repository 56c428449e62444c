// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"fmt"
	"strconv"
	"strings"
)

// Command names on the wire.
const (
	CommandKey   = "key"
	CommandClick = "click"
	CommandDrag  = "drag"
)

// Key codes carried by KeyCommand. They follow the SDL keycode space so that
// printable keys are their ASCII value.
const (
	KeyBackspace = 8
	KeyTab       = 9
	KeyReturn    = 13
	KeyEscape    = 27
	KeyDelete    = 127

	keyScancodeMask = 1 << 30

	KeyRight = 79 | keyScancodeMask
	KeyLeft  = 80 | keyScancodeMask
	KeyDown  = 81 | keyScancodeMask
	KeyUp    = 82 | keyScancodeMask

	// KeyKeypad1 .. KeyKeypad9 are consecutive, KeyKeypad0 follows them.
	KeyKeypad1 = 89 | keyScancodeMask
	KeyKeypad0 = 98 | keyScancodeMask
)

// Key modifier bits carried by KeyCommand.
const (
	ModNone  = 0x0000
	ModShift = 0x0001
	ModCtrl  = 0x0040
	ModAlt   = 0x0100
)

// InputCommand is one decoded client input line.
type InputCommand interface {
	// Name returns the wire name of the command.
	Name() string

	inputCommand()
}

// KeyCommand is a key press with its modifier state.
type KeyCommand struct {
	Code int
	Mod  int
}

// ClickCommand is a primary-button press at logical coordinates.
type ClickCommand struct {
	X int
	Y int
}

// DragCommand is a relative pointer movement with a button held.
type DragCommand struct {
	DX int
	DY int
}

// Name returns "key".
func (KeyCommand) Name() string { return CommandKey }

// Name returns "click".
func (ClickCommand) Name() string { return CommandClick }

// Name returns "drag".
func (DragCommand) Name() string { return CommandDrag }

func (KeyCommand) inputCommand()   {}
func (ClickCommand) inputCommand() {}
func (DragCommand) inputCommand()  {}

// EncodeCommand renders cmd as one newline-terminated line.
func EncodeCommand(cmd InputCommand) string {
	switch c := cmd.(type) {
	case KeyCommand:
		return fmt.Sprintf("%s %d %d\n", CommandKey, c.Code, c.Mod)
	case ClickCommand:
		return fmt.Sprintf("%s %d %d\n", CommandClick, c.X, c.Y)
	case DragCommand:
		return fmt.Sprintf("%s %d %d\n", CommandDrag, c.DX, c.DY)
	case *KeyCommand:
		return EncodeCommand(*c)
	case *ClickCommand:
		return EncodeCommand(*c)
	case *DragCommand:
		return EncodeCommand(*c)
	default:
		return ""
	}
}

// DecodeCommand parses one input line. A trailing "\n" or "\r\n" is ignored.
func DecodeCommand(line string) (InputCommand, error) {
	fields := strings.Fields(strings.TrimRight(line, "\r\n"))
	if len(fields) == 0 {
		return nil, unknownCommandError("DecodeCommand", "empty command line", nil)
	}

	name := fields[0]
	switch name {
	case CommandKey, CommandClick, CommandDrag:
	default:
		return nil, unknownCommandError("DecodeCommand", fmt.Sprintf("unknown command %q", name), nil)
	}

	if len(fields) != 3 {
		return nil, malformedCommandError("DecodeCommand",
			fmt.Sprintf("%s expects 2 integer fields, got %d", name, len(fields)-1), nil)
	}

	a, err := parseCommandInt(name, fields[1])
	if err != nil {
		return nil, err
	}
	b, err := parseCommandInt(name, fields[2])
	if err != nil {
		return nil, err
	}

	switch name {
	case CommandKey:
		return KeyCommand{Code: a, Mod: b}, nil
	case CommandClick:
		return ClickCommand{X: a, Y: b}, nil
	default:
		return DragCommand{DX: a, DY: b}, nil
	}
}

func parseCommandInt(name, s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, malformedCommandError("DecodeCommand", fmt.Sprintf("%s field %q is not an integer", name, s), err)
	}
	if err := newInputValidator().ValidateCommandValue(name, v); err != nil {
		return 0, malformedCommandError("DecodeCommand", fmt.Sprintf("%s field %q out of range", name, s), err)
	}
	return int(v), nil
}

// ToLogical converts physical display coordinates to the logical
// coordinates carried by click and drag commands.
func ToLogical(x, y, scale int) (int, int) {
	if scale <= 1 {
		return x, y
	}
	return floorDiv(x, scale), floorDiv(y, scale)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
