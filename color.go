// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"image"
	"image/color"
)

// RGB represents one pixel as it travels on the wire. There is no alpha channel.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// RGBA implements color.Color so an RGB can be handed to image/draw.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// RGBFromColor converts any color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)} // #nosec G115 - 16-bit channels shifted to 8 bits
}

// PixelBuffer is a row-major grid of RGB pixels with the origin at the top-left.
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []RGB
}

// NewPixelBuffer creates a black pixel buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]RGB, width*height),
	}
}

// At returns the pixel at (x, y). Out of range coordinates return black.
func (pb *PixelBuffer) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= pb.Width || y >= pb.Height {
		return RGB{}
	}
	return pb.Pixels[y*pb.Width+x]
}

// Set updates the pixel at (x, y). Out of range coordinates are ignored.
func (pb *PixelBuffer) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= pb.Width || y >= pb.Height {
		return
	}
	pb.Pixels[y*pb.Width+x] = c
}

// Fill sets every pixel to c.
func (pb *PixelBuffer) Fill(c RGB) {
	for i := range pb.Pixels {
		pb.Pixels[i] = c
	}
}

// Image converts the buffer into an *image.RGBA.
func (pb *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			p := pb.Pixels[y*pb.Width+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = p.R
			img.Pix[i+1] = p.G
			img.Pix[i+2] = p.B
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// FromImage copies img into a new PixelBuffer. The image bounds are
// translated so that the result always starts at (0, 0).
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	pb := NewPixelBuffer(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < pb.Height; y++ {
			for x := 0; x < pb.Width; x++ {
				i := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				pb.Pixels[y*pb.Width+x] = RGB{R: rgba.Pix[i], G: rgba.Pix[i+1], B: rgba.Pix[i+2]}
			}
		}
		return pb
	}

	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			pb.Pixels[y*pb.Width+x] = RGBFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return pb
}

// Common colors used by the table renderer.
var (
	// ColorBlack represents pure black (0, 0, 0).
	ColorBlack = RGB{R: 0, G: 0, B: 0}

	// ColorWhite represents pure white (255, 255, 255).
	ColorWhite = RGB{R: 255, G: 255, B: 255}

	// ColorRed represents pure red (255, 0, 0).
	ColorRed = RGB{R: 255, G: 0, B: 0}

	// ColorGreen represents pure green (0, 255, 0).
	ColorGreen = RGB{R: 0, G: 255, B: 0}

	// ColorBlue represents pure blue (0, 0, 255).
	ColorBlue = RGB{R: 0, G: 0, B: 255}

	// ColorFelt is the table background.
	ColorFelt = RGB{R: 0, G: 120, B: 0}
)
