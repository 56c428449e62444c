// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	smallGlyphWidth  = 3
	smallGlyphAscent = 5
	smallGlyphStride = smallGlyphAscent + 1
)

// smallGlyphs covers ASCII 0x20-0x5F, five rows of three pixels each.
var smallGlyphs = [...][smallGlyphAscent]string{
	{"...", "...", "...", "...", "..."}, // space
	{".#.", ".#.", ".#.", "...", ".#."}, // !
	{"#.#", "#.#", "...", "...", "..."}, // "
	{"#.#", "###", "#.#", "###", "#.#"}, // #
	{".##", "##.", ".#.", ".##", "##."}, // $
	{"#..", "..#", ".#.", "#..", "..#"}, // %
	{".#.", "#.#", ".#.", "#.#", ".##"}, // &
	{".#.", ".#.", "...", "...", "..."}, // '
	{"..#", ".#.", ".#.", ".#.", "..#"}, // (
	{"#..", ".#.", ".#.", ".#.", "#.."}, // )
	{"...", "#.#", ".#.", "#.#", "..."}, // *
	{"...", ".#.", "###", ".#.", "..."}, // +
	{"...", "...", "...", ".#.", "#.."}, // ,
	{"...", "...", "###", "...", "..."}, // -
	{"...", "...", "...", "...", ".#."}, // .
	{"..#", "..#", ".#.", "#..", "#.."}, // /
	{"###", "#.#", "#.#", "#.#", "###"}, // 0
	{".#.", "##.", ".#.", ".#.", "###"}, // 1
	{"##.", "..#", ".#.", "#..", "###"}, // 2
	{"##.", "..#", ".#.", "..#", "##."}, // 3
	{"#.#", "#.#", "###", "..#", "..#"}, // 4
	{"###", "#..", "##.", "..#", "##."}, // 5
	{".##", "#..", "###", "#.#", "###"}, // 6
	{"###", "..#", ".#.", ".#.", ".#."}, // 7
	{"###", "#.#", "###", "#.#", "###"}, // 8
	{"###", "#.#", "###", "..#", "##."}, // 9
	{"...", ".#.", "...", ".#.", "..."}, // :
	{"...", ".#.", "...", ".#.", "#.."}, // ;
	{"..#", ".#.", "#..", ".#.", "..#"}, // <
	{"...", "###", "...", "###", "..."}, // =
	{"#..", ".#.", "..#", ".#.", "#.."}, // >
	{"##.", "..#", ".#.", "...", ".#."}, // ?
	{".#.", "#.#", "###", "#..", ".##"}, // @
	{".#.", "#.#", "###", "#.#", "#.#"}, // A
	{"##.", "#.#", "##.", "#.#", "##."}, // B
	{".##", "#..", "#..", "#..", ".##"}, // C
	{"##.", "#.#", "#.#", "#.#", "##."}, // D
	{"###", "#..", "##.", "#..", "###"}, // E
	{"###", "#..", "##.", "#..", "#.."}, // F
	{".##", "#..", "#.#", "#.#", ".##"}, // G
	{"#.#", "#.#", "###", "#.#", "#.#"}, // H
	{"###", ".#.", ".#.", ".#.", "###"}, // I
	{"..#", "..#", "..#", "#.#", ".#."}, // J
	{"#.#", "#.#", "##.", "#.#", "#.#"}, // K
	{"#..", "#..", "#..", "#..", "###"}, // L
	{"#.#", "###", "###", "#.#", "#.#"}, // M
	{"##.", "#.#", "#.#", "#.#", "#.#"}, // N
	{".#.", "#.#", "#.#", "#.#", ".#."}, // O
	{"##.", "#.#", "##.", "#..", "#.."}, // P
	{".#.", "#.#", "#.#", "###", ".##"}, // Q
	{"##.", "#.#", "##.", "#.#", "#.#"}, // R
	{".##", "#..", ".#.", "..#", "##."}, // S
	{"###", ".#.", ".#.", ".#.", ".#."}, // T
	{"#.#", "#.#", "#.#", "#.#", ".##"}, // U
	{"#.#", "#.#", "#.#", ".#.", ".#."}, // V
	{"#.#", "#.#", "###", "###", "#.#"}, // W
	{"#.#", "#.#", ".#.", "#.#", "#.#"}, // X
	{"#.#", "#.#", ".#.", ".#.", ".#."}, // Y
	{"###", "..#", ".#.", "#..", "###"}, // Z
	{"##.", "#..", "#..", "#..", "##."}, // [
	{"#..", "#..", ".#.", "..#", "..#"}, // backslash
	{".##", "..#", "..#", "..#", ".##"}, // ]
	{".#.", "#.#", "...", "...", "..."}, // ^
	{"...", "...", "...", "...", "###"}, // _
}

// suitGlyphs covers U+2660-U+2667. Only the filled suits are drawn.
var suitGlyphs = [...][smallGlyphAscent]string{
	{".#.", "###", "###", ".#.", "###"}, // ♠
	{"...", "...", "...", "...", "..."},
	{"...", "...", "...", "...", "..."},
	{".#.", "#.#", ".#.", "###", ".#."}, // ♣
	{"...", "...", "...", "...", "..."},
	{"#.#", "###", "###", ".#.", "..."}, // ♥
	{".#.", "###", "###", ".#.", "..."}, // ♦
	{"...", "...", "...", "...", "..."},
}

// Suit glyph runes understood by SmallFace.
const (
	GlyphSpade   = '♠'
	GlyphClub    = '♣'
	GlyphHeart   = '♥'
	GlyphDiamond = '♦'
)

// SmallFace is a 3x5 pixel face for labels and card faces. Lower-case
// letters are drawn with the upper-case glyphs.
var SmallFace font.Face = newSmallFace()

// LargeFace is used for headings and amounts.
var LargeFace font.Face = basicfont.Face7x13

func newSmallFace() *basicfont.Face {
	glyphs := make([][smallGlyphAscent]string, 0, len(smallGlyphs)+len(suitGlyphs))
	glyphs = append(glyphs, smallGlyphs[:]...)
	glyphs = append(glyphs, suitGlyphs[:]...)

	mask := image.NewAlpha(image.Rect(0, 0, smallGlyphWidth, len(glyphs)*smallGlyphStride))
	for i, g := range glyphs {
		for y, row := range g {
			for x := 0; x < smallGlyphWidth; x++ {
				if row[x] == '#' {
					mask.Pix[(i*smallGlyphStride+y)*mask.Stride+x] = 0xff
				}
			}
		}
	}

	upper := 'A' - 0x20
	return &basicfont.Face{
		Advance: smallGlyphWidth + 1,
		Width:   smallGlyphWidth,
		Height:  smallGlyphStride + 1,
		Ascent:  smallGlyphAscent,
		Descent: 1,
		Mask:    mask,
		Ranges: []basicfont.Range{
			{Low: 0x20, High: 0x60, Offset: 0},
			{Low: 'a', High: 'z' + 1, Offset: int(upper)},
			{Low: GlyphSpade, High: GlyphSpade + 8, Offset: len(smallGlyphs)},
		},
	}
}

// TextWidth returns the advance of s in face, in pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// TextHeight returns the ascent plus descent of face, in pixels.
func TextHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}
