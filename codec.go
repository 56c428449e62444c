// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol alphabet used for colour channels: every printable, non-space ASCII
// character from '!' to '~'.
const (
	SymbolMin   = 0x21
	SymbolMax   = 0x7E
	SymbolCount = SymbolMax - SymbolMin + 1

	// symbolSteps is the largest symbol index. Channel values are spread over
	// [0, symbolSteps] so that byte 255 lands on '~' and never on DEL.
	symbolSteps = SymbolCount - 1
)

var (
	channelToSymbol [256]byte
	symbolToChannel [SymbolCount]uint8
)

func init() {
	for b := 0; b < 256; b++ {
		channelToSymbol[b] = byte(SymbolMin + (b*symbolSteps+127)/255) // #nosec G115 - result is within [0x21, 0x7E]
	}
	for i := 0; i < SymbolCount; i++ {
		symbolToChannel[i] = uint8((i*255 + symbolSteps/2) / symbolSteps) // #nosec G115 - result is within [0, 255]
	}
}

// EncodeChannel maps one colour channel byte onto its printable symbol.
func EncodeChannel(b uint8) byte {
	return channelToSymbol[b]
}

// DecodeChannel maps a printable symbol back onto a channel byte.
// The second result is false if s lies outside the symbol alphabet.
func DecodeChannel(s byte) (uint8, bool) {
	if s < SymbolMin || s > SymbolMax {
		return 0, false
	}
	return symbolToChannel[s-SymbolMin], true
}

// EncodedFrame is one image in its text form: "<width> <symbols>".
// It never contains a newline.
type EncodedFrame string

// Width returns the declared width, or 0 if the header cannot be parsed.
func (f EncodedFrame) Width() int {
	head, _, ok := strings.Cut(string(f), " ")
	if !ok {
		return 0
	}
	w, err := strconv.Atoi(head)
	if err != nil || w < 1 {
		return 0
	}
	return w
}

// Symbols returns the pixel payload that follows the width header.
func (f EncodedFrame) Symbols() string {
	_, symbols, _ := strings.Cut(string(f), " ")
	return symbols
}

// String returns the frame text.
func (f EncodedFrame) String() string {
	return string(f)
}

// Encode serialises pb into an EncodedFrame. Each pixel becomes three symbols,
// red, green then blue, in row-major order.
func Encode(pb *PixelBuffer) EncodedFrame {
	width := strconv.Itoa(pb.Width)

	buf := make([]byte, 0, len(width)+1+3*len(pb.Pixels))
	buf = append(buf, width...)
	buf = append(buf, ' ')
	for _, p := range pb.Pixels {
		buf = append(buf, channelToSymbol[p.R], channelToSymbol[p.G], channelToSymbol[p.B])
	}
	return EncodedFrame(buf)
}

// Decode parses an EncodedFrame back into pixels. The height is derived from
// the payload length. A scale above 1 enlarges the result with
// nearest-neighbour sampling: output (x, y) copies decoded (x/scale, y/scale).
func Decode(frame EncodedFrame, scale int) (*PixelBuffer, error) {
	validator := newInputValidator()
	if err := validator.ValidateScale(scale); err != nil {
		return nil, validationError("Decode", "invalid scale factor", err)
	}

	head, symbols, ok := strings.Cut(string(frame), " ")
	if !ok {
		return nil, malformedFrameError("Decode", "missing width separator", nil)
	}

	if head == "" || strings.TrimLeft(head, "0123456789") != "" {
		return nil, malformedFrameError("Decode", fmt.Sprintf("width %q is not a decimal integer", head), nil)
	}
	width, err := strconv.Atoi(head)
	if err != nil {
		return nil, malformedFrameError("Decode", fmt.Sprintf("width %q out of range", head), err)
	}
	if width < 1 {
		return nil, malformedFrameError("Decode", fmt.Sprintf("width must be at least 1, got %d", width), nil)
	}

	rowLen := 3 * width
	if len(symbols) == 0 || len(symbols)%rowLen != 0 {
		return nil, malformedFrameError("Decode",
			fmt.Sprintf("payload length %d is not a positive multiple of %d", len(symbols), rowLen), nil)
	}
	height := len(symbols) / rowLen

	if err := validator.ValidateDimensions(width*scale, height*scale); err != nil {
		return nil, malformedFrameError("Decode", "decoded image too large", err)
	}

	src := NewPixelBuffer(width, height)
	for i := range src.Pixels {
		var ch [3]uint8
		for c := 0; c < 3; c++ {
			s := symbols[3*i+c]
			v, ok := DecodeChannel(s)
			if !ok {
				return nil, malformedFrameError("Decode",
					fmt.Sprintf("symbol 0x%02x at offset %d outside printable range", s, 3*i+c), nil)
			}
			ch[c] = v
		}
		src.Pixels[i] = RGB{R: ch[0], G: ch[1], B: ch[2]}
	}

	if scale == 1 {
		return src, nil
	}
	return upscale(src, scale), nil
}

// upscale enlarges src by an integer factor using nearest-neighbour sampling.
func upscale(src *PixelBuffer, k int) *PixelBuffer {
	dst := NewPixelBuffer(src.Width*k, src.Height*k)
	for y := 0; y < dst.Height; y++ {
		row := src.Pixels[(y/k)*src.Width : (y/k+1)*src.Width]
		out := dst.Pixels[y*dst.Width : (y+1)*dst.Width]
		for x := range out {
			out[x] = row[x/k]
		}
	}
	return dst
}
