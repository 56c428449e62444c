// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// keyChord is a key code together with the shift bit of its modifiers.
type keyChord struct {
	code  int
	shift bool
}

// Charmap translates key presses into the characters a field accepts.
type Charmap map[keyChord]rune

// Lookup returns the character for code under mod. Only the shift bit of mod
// is significant.
func (m Charmap) Lookup(code, mod int) (rune, bool) {
	r, ok := m[keyChord{code: code, shift: mod&blackjackvm.ModShift != 0}]
	return r, ok
}

// DigitCharmap accepts the number row and the keypad digits, unshifted.
func DigitCharmap() Charmap {
	m := Charmap{}
	for d := 0; d <= 9; d++ {
		m[keyChord{code: '0' + d}] = rune('0' + d)
	}
	m[keyChord{code: blackjackvm.KeyKeypad0}] = '0'
	for d := 1; d <= 9; d++ {
		m[keyChord{code: blackjackvm.KeyKeypad1 + d - 1}] = rune('0' + d)
	}
	return m
}

// UsernameCharmap accepts letters in both cases, digits and the underscore.
func UsernameCharmap() Charmap {
	m := DigitCharmap()
	for c := 'a'; c <= 'z'; c++ {
		m[keyChord{code: int(c)}] = c
		m[keyChord{code: int(c), shift: true}] = c - 'a' + 'A'
	}
	m[keyChord{code: '-', shift: true}] = '_'
	return m
}

// TextField is a single-line editable field with a cursor.
type TextField struct {
	Width   int
	MaxLen  int
	Trim    blackjackvm.RGB
	Text    blackjackvm.RGB
	charmap Charmap
	chars   []rune
	cursor  int
	logger  blackjackvm.Logger
}

// NewTextField returns an empty field of the given pixel width accepting
// characters from charmap. maxLen of zero means unbounded.
func NewTextField(width, maxLen int, charmap Charmap, logger blackjackvm.Logger) *TextField {
	if logger == nil {
		logger = &blackjackvm.NoOpLogger{}
	}
	return &TextField{
		Width:   width,
		MaxLen:  maxLen,
		Trim:    blackjackvm.RGB{R: 200, G: 200, B: 200},
		Text:    blackjackvm.RGB{R: 230, G: 230, B: 230},
		charmap: charmap,
		logger:  logger,
	}
}

// HandleKey applies one key press. It reports whether the field changed.
func (f *TextField) HandleKey(code, mod int) bool {
	switch code {
	case blackjackvm.KeyLeft:
		return f.moveCursor(-1)
	case blackjackvm.KeyRight:
		return f.moveCursor(1)
	case blackjackvm.KeyBackspace:
		if f.cursor == 0 {
			return false
		}
		f.cursor--
		f.chars = append(f.chars[:f.cursor], f.chars[f.cursor+1:]...)
		return true
	case blackjackvm.KeyDelete:
		if f.cursor >= len(f.chars) {
			return false
		}
		f.chars = append(f.chars[:f.cursor], f.chars[f.cursor+1:]...)
		return true
	default:
		return f.insert(code, mod)
	}
}

func (f *TextField) insert(code, mod int) bool {
	if f.MaxLen > 0 && len(f.chars) >= f.MaxLen {
		return false
	}
	r, ok := f.charmap.Lookup(code, mod)
	if !ok {
		f.logger.Debug("Ignoring unmapped key", blackjackvm.Field{Key: "code", Value: code}, blackjackvm.Field{Key: "mod", Value: mod})
		return false
	}
	f.chars = append(f.chars, 0)
	copy(f.chars[f.cursor+1:], f.chars[f.cursor:])
	f.chars[f.cursor] = r
	f.cursor++
	return true
}

func (f *TextField) moveCursor(delta int) bool {
	pos := min(max(f.cursor+delta, 0), len(f.chars))
	if pos == f.cursor {
		return false
	}
	f.cursor = pos
	return true
}

// String returns the field contents.
func (f *TextField) String() string { return string(f.chars) }

// Len returns the number of characters entered.
func (f *TextField) Len() int { return len(f.chars) }

// Cursor returns the insertion point.
func (f *TextField) Cursor() int { return f.cursor }

// Clear empties the field.
func (f *TextField) Clear() {
	f.chars = f.chars[:0]
	f.cursor = 0
}

// Draw paints the field with its top-left corner at (x, y).
func (f *TextField) Draw(c *Canvas, x, y int) {
	const pad = 2
	h := TextHeight(SmallFace) + 2*pad + 1
	r := image.Rect(x, y, x+f.Width, y+h)
	c.FillRect(r, blackjackvm.ColorBlack)
	c.StrokeRect(r, f.Trim)
	c.Text(SmallFace, x+pad, y+pad, f.String(), f.Text)

	cx := x + pad + TextWidth(SmallFace, string(f.chars[:f.cursor]))
	c.FillRect(image.Rect(cx-1, y+pad, cx, y+pad+TextHeight(SmallFace)), f.Text)
}

// DrawBoxes paints one box per character slot, for fixed-length codes.
func (f *TextField) DrawBoxes(c *Canvas, x, y int) {
	const pad = 2
	boxW := smallGlyphWidth + 2*pad
	boxH := smallGlyphAscent + 2*pad
	for i := 0; i < f.MaxLen; i++ {
		bx := x + i*(boxW+1)
		c.StrokeRect(image.Rect(bx, y, bx+boxW, y+boxH), f.Trim)
		if i < len(f.chars) {
			c.Text(SmallFace, bx+pad, y+pad, string(f.chars[i]), f.Text)
		}
	}
}

// BoxesWidth returns the width DrawBoxes occupies.
func (f *TextField) BoxesWidth() int {
	return f.MaxLen*(smallGlyphWidth+5) - 1
}
