// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package terminal

import (
	"github.com/gdamore/tcell/v2"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// shiftedSymbols maps characters typed with shift on a US layout to the
// key that produces them.
var shiftedSymbols = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', '|': '\\',
	':': ';', '"': '\'', '<': ',', '>': '.', '?': '/', '~': '`',
}

var specialKeys = map[tcell.Key]int{
	tcell.KeyEnter:      blackjackvm.KeyReturn,
	tcell.KeyBackspace:  blackjackvm.KeyBackspace,
	tcell.KeyBackspace2: blackjackvm.KeyBackspace,
	tcell.KeyDelete:     blackjackvm.KeyDelete,
	tcell.KeyTab:        blackjackvm.KeyTab,
	tcell.KeyLeft:       blackjackvm.KeyLeft,
	tcell.KeyRight:      blackjackvm.KeyRight,
	tcell.KeyUp:         blackjackvm.KeyUp,
	tcell.KeyDown:       blackjackvm.KeyDown,
}

// KeyCommand translates a terminal key event into the key code and
// modifier a keyboard would report for it. Upper-case letters and shifted
// symbols become the unshifted key plus ModShift.
func KeyCommand(ev *tcell.EventKey) (blackjackvm.KeyCommand, bool) {
	mod := blackjackvm.ModNone
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mod |= blackjackvm.ModAlt
	}

	if ev.Key() != tcell.KeyRune {
		code, ok := specialKeys[ev.Key()]
		if !ok {
			return blackjackvm.KeyCommand{}, false
		}
		return blackjackvm.KeyCommand{Code: code, Mod: mod}, true
	}

	r := ev.Rune()
	switch {
	case r >= 'A' && r <= 'Z':
		return blackjackvm.KeyCommand{Code: int(r - 'A' + 'a'), Mod: mod | blackjackvm.ModShift}, true
	case shiftedSymbols[r] != 0:
		return blackjackvm.KeyCommand{Code: int(shiftedSymbols[r]), Mod: mod | blackjackvm.ModShift}, true
	case r >= ' ' && r < 0x7f:
		return blackjackvm.KeyCommand{Code: int(r), Mod: mod}, true
	default:
		return blackjackvm.KeyCommand{}, false
	}
}
