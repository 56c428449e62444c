// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// Card face dimensions in pixels.
const (
	CardWidth  = 11
	CardHeight = 15
)

var (
	cardFace    = blackjackvm.RGB{R: 245, G: 245, B: 235}
	cardEdge    = blackjackvm.RGB{R: 60, G: 60, B: 60}
	cardBack    = blackjackvm.RGB{R: 40, G: 60, B: 170}
	cardPattern = blackjackvm.RGB{R: 90, G: 110, B: 210}
	suitRed     = blackjackvm.RGB{R: 200, G: 20, B: 20}
	activeTrim  = blackjackvm.RGB{R: 100, G: 100, B: 255}
)

func suitGlyph(s blackjackvm.Suit) string {
	switch s {
	case blackjackvm.SuitHearts:
		return string(GlyphHeart)
	case blackjackvm.SuitDiamonds:
		return string(GlyphDiamond)
	case blackjackvm.SuitSpades:
		return string(GlyphSpade)
	default:
		return string(GlyphClub)
	}
}

// DrawCard paints one card with its top-left corner at (x, y).
func DrawCard(c *Canvas, x, y int, card blackjackvm.Card) {
	r := image.Rect(x, y, x+CardWidth, y+CardHeight)
	if card.FaceDown() {
		c.FillRect(r, cardBack)
		for py := y + 2; py < y+CardHeight-2; py += 2 {
			for px := x + 2 + (py-y)%4/2; px < x+CardWidth-2; px += 2 {
				c.FillRect(image.Rect(px, py, px+1, py+1), cardPattern)
			}
		}
		c.StrokeRect(r, cardEdge)
		return
	}

	c.FillRect(r, cardFace)
	c.StrokeRect(r, cardEdge)

	ink := blackjackvm.ColorBlack
	if card.Suit().IsRed() {
		ink = suitRed
	}
	c.Text(SmallFace, x+2, y+2, card.Rank().Symbol(), ink)
	c.Text(SmallFace, x+CardWidth-2-smallGlyphWidth, y+CardHeight-2-smallGlyphAscent, suitGlyph(card.Suit()), ink)
}

// HandWidth returns the width DrawHand uses for n cards.
func HandWidth(n int) int {
	if n == 0 {
		return 0
	}
	return n*(CardWidth+1) - 1
}

// DrawHand paints cards side by side, centred on (cx, cy).
func DrawHand(c *Canvas, cx, cy int, cards []blackjackvm.Card) image.Rectangle {
	w := HandWidth(len(cards))
	x0, y0 := cx-w/2, cy-CardHeight/2
	for i, card := range cards {
		DrawCard(c, x0+i*(CardWidth+1), y0, card)
	}
	return image.Rect(x0, y0, x0+w, y0+CardHeight)
}
