package model

import "strings"

const (
	Rows      = 5
	Cols      = 5
	NumPixels = Rows * Cols

	MinDigit Digit = 0
	MaxDigit Digit = 9
)

// Digit is the value shown on the matrix, always within [MinDigit, MaxDigit].
type Digit uint8

// Clamp saturates v into [MinDigit, MaxDigit].
func Clamp(v int) Digit {
	if v < int(MinDigit) {
		return MinDigit
	}
	if v > int(MaxDigit) {
		return MaxDigit
	}
	return Digit(v)
}

// Frame is a row-major 5x5 bitmap.
type Frame [NumPixels]bool

// At reports the cell at row, col.
func (f Frame) At(row, col int) bool {
	return f[row*Cols+col]
}

func (f Frame) String() string {
	return picture(func(i int) bool { return f[i] })
}

// FrameFor returns the bitmap for d. d must already be clamped.
func FrameFor(d Digit) Frame {
	return frames[d]
}

var frames = [MaxDigit + 1]Frame{
	bitmap(
		"#####",
		"#...#",
		"#...#",
		"#...#",
		"#####",
	),
	bitmap(
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	),
	bitmap(
		"#####",
		"....#",
		"#####",
		"#....",
		"#####",
	),
	bitmap(
		"#####",
		"....#",
		"#####",
		"....#",
		"#####",
	),
	bitmap(
		"#...#",
		"#...#",
		"#####",
		"....#",
		"....#",
	),
	bitmap(
		"#####",
		"#....",
		"#####",
		"....#",
		"#####",
	),
	bitmap(
		"#####",
		"#....",
		"#####",
		"#...#",
		"#####",
	),
	bitmap(
		"#####",
		"....#",
		"...#.",
		"..#..",
		".#...",
	),
	bitmap(
		"#####",
		"#...#",
		"#####",
		"#...#",
		"#####",
	),
	bitmap(
		"#####",
		"#...#",
		"#####",
		"....#",
		"....#",
	),
}

// bitmap builds a Frame from five five-character rows, '#' meaning lit.
func bitmap(rows ...string) Frame {
	var f Frame
	for r, line := range rows {
		for c := 0; c < Cols; c++ {
			f[r*Cols+c] = line[c] == '#'
		}
	}
	return f
}

func picture(lit func(i int) bool) string {
	var b strings.Builder
	for r := 0; r < Rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < Cols; c++ {
			if lit(r*Cols + c) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
