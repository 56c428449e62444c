// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

// Canvas is the drawing surface one frame is rendered onto.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas returns a black canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.Fill(blackjackvm.ColorBlack)
	return c
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Image exposes the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Fill paints the whole canvas.
func (c *Canvas) Fill(col color.Color) {
	c.FillRect(c.img.Bounds(), col)
}

// FillRect paints r, clipped to the canvas.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

// BlendRect composites a translucent colour over r.
func (c *Canvas) BlendRect(r image.Rectangle, col color.NRGBA) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect draws a one pixel outline just inside r.
func (c *Canvas) StrokeRect(r image.Rectangle, col color.Color) {
	if r.Empty() {
		return
	}
	c.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	c.FillRect(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	c.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	c.FillRect(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// Disc fills the pixels whose centres lie within radius of (cx, cy).
func (c *Canvas) Disc(cx, cy, radius int, col color.Color) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 && image.Pt(cx+x, cy+y).In(c.img.Bounds()) {
				c.img.Set(cx+x, cy+y, col)
			}
		}
	}
}

// Text draws s with its top-left corner at (x, y).
func (c *Canvas) Text(face font.Face, x, y int, s string, col color.Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// TextCentered draws s horizontally centred on cx with its top at y.
func (c *Canvas) TextCentered(face font.Face, cx, y int, s string, col color.Color) {
	c.Text(face, cx-TextWidth(face, s)/2, y, s, col)
}

// TextInRect draws s centred in r.
func (c *Canvas) TextInRect(face font.Face, r image.Rectangle, s string, col color.Color) {
	cx := r.Min.X + r.Dx()/2
	y := r.Min.Y + (r.Dy()-TextHeight(face))/2
	c.TextCentered(face, cx, y, s, col)
}

// TextScaled draws s enlarged by an integer factor with its top-left corner
// at (x, y).
func (c *Canvas) TextScaled(face font.Face, x, y, scale int, s string, col color.Color) {
	w, h := TextWidth(face, s), TextHeight(face)
	if w == 0 || scale < 1 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	dst := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(c.img, dst, tmp, tmp.Bounds(), draw.Over, nil)
}

// Blit copies pb with its top-left corner at (x, y).
func (c *Canvas) Blit(pb *blackjackvm.PixelBuffer, x, y int) {
	src := pb.Image()
	draw.Copy(c.img, image.Pt(x, y), src, src.Bounds(), draw.Src, nil)
}

// Frame converts the canvas to a PixelBuffer ready for encoding.
func (c *Canvas) Frame() *blackjackvm.PixelBuffer {
	return blackjackvm.FromImage(c.img)
}
