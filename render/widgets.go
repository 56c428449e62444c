// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"
	"image/color"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// Button is a labelled rectangle that reacts to clicks inside it.
type Button struct {
	Rect       image.Rectangle
	Label      string
	Background blackjackvm.RGB
	Foreground blackjackvm.RGB
	// Disabled buttons are drawn with DisabledForeground and ignore clicks.
	Disabled           bool
	DisabledForeground blackjackvm.RGB
}

// NewButton returns an enabled button at (x, y) of size w x h with white text.
func NewButton(x, y, w, h int, label string, bg blackjackvm.RGB) *Button {
	return &Button{
		Rect:               image.Rect(x, y, x+w, y+h),
		Label:              label,
		Background:         bg,
		Foreground:         blackjackvm.ColorWhite,
		DisabledForeground: blackjackvm.ColorBlack,
	}
}

// Contains reports whether (x, y) lies inside the button.
func (b *Button) Contains(x, y int) bool {
	return image.Pt(x, y).In(b.Rect)
}

// Hit reports whether a click at (x, y) activates the button.
func (b *Button) Hit(x, y int) bool {
	return !b.Disabled && b.Contains(x, y)
}

// Draw paints the button with a darker bottom and right edge.
func (b *Button) Draw(c *Canvas) {
	c.FillRect(b.Rect, b.Background)
	shade := darken(b.Background)
	c.FillRect(image.Rect(b.Rect.Min.X, b.Rect.Max.Y-1, b.Rect.Max.X, b.Rect.Max.Y), shade)
	c.FillRect(image.Rect(b.Rect.Max.X-1, b.Rect.Min.Y, b.Rect.Max.X, b.Rect.Max.Y), shade)

	fg := b.Foreground
	if b.Disabled {
		fg = b.DisabledForeground
	}
	c.TextInRect(SmallFace, b.Rect, b.Label, fg)
}

// Chip is a round bet adjustment button.
type Chip struct {
	Button
}

// NewChip returns a chip of the given diameter with its top-left at (x, y).
func NewChip(x, y, size int, label string, bg blackjackvm.RGB) *Chip {
	return &Chip{Button: *NewButton(x, y, size, size, label, bg)}
}

// Draw paints the chip as a disc with a rim.
func (ch *Chip) Draw(c *Canvas) {
	r := ch.Rect.Dx() / 2
	cx, cy := ch.Rect.Min.X+r, ch.Rect.Min.Y+r
	c.Disc(cx, cy, r, darken(ch.Background))
	c.Disc(cx, cy, r-1, ch.Background)
	c.TextCentered(SmallFace, cx+1, cy-TextHeight(SmallFace)/2+1, ch.Label, ch.Foreground)
}

func darken(c blackjackvm.RGB) blackjackvm.RGB {
	return blackjackvm.RGB{R: uint8(int(c.R) * 7 / 10), G: uint8(int(c.G) * 7 / 10), B: uint8(int(c.B) * 7 / 10)}
}

// overlay is the translucent backdrop behind modal prompts.
var overlay = color.NRGBA{A: 220}
