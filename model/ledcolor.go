package model

import (
	"fmt"
	"image/color"
)

// Channel offsets inside a packed GRB value.
const (
	GREEN_OFFSET uint8 = 0x10
	RED_OFFSET   uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// WORD_PAD is the left shift applied to a packed pixel before it is shifted out
// MSB-first: 24 data bits followed by 8 bits of padding.
const WORD_PAD uint8 = 8

// DefaultColor is the dim cyan used by the demo board.
var DefaultColor = NewColor(0, 5, 5)

// Off is every channel at zero.
var Off = Color{}

// Color is a fixed RGB triple stored packed in GRB order.
type Color struct {
	val uint32
}

func NewColor(r, g, b uint8) Color {
	c := Color{}
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	return c
}

// FromGRB builds a Color from a packed 0x00GGRRBB value.
func FromGRB(grb uint32) Color {
	return Color{val: grb & 0xFFFFFF}
}

// FromWord reverses Word.
func FromWord(w uint32) Color {
	return FromGRB(w >> WORD_PAD)
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *Color) SetR(r uint8) {
	c.val = setcolor(c.val, r, RED_OFFSET)
}
func (c *Color) SetG(g uint8) {
	c.val = setcolor(c.val, g, GREEN_OFFSET)
}
func (c *Color) SetB(b uint8) {
	c.val = setcolor(c.val, b, BLUE_OFFSET)
}

func (c Color) GetR() uint8 {
	return getcolor(c.val, RED_OFFSET)
}
func (c Color) GetG() uint8 {
	return getcolor(c.val, GREEN_OFFSET)
}
func (c Color) GetB() uint8 {
	return getcolor(c.val, BLUE_OFFSET)
}

// GRB returns the packed 24-bit value, green in the top byte.
func (c Color) GRB() uint32 {
	return c.val
}

// Word is the 32-bit value pushed to the transmit queue.
func (c Color) Word() uint32 {
	return c.val << WORD_PAD
}

// RGB appends the channels in red, green, blue order.
func (c Color) RGB(dst []byte) []byte {
	return append(dst, c.GetR(), c.GetG(), c.GetB())
}

func (c Color) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: c.GetR(), G: c.GetG(), B: c.GetB(), A: 255}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.GetR(), c.GetG(), c.GetB())
}
