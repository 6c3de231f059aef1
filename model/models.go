package model

import "sync"

// Buffer holds the on/off state of each LED in wiring order.
type Buffer [NumPixels]bool

// Index maps a logical row, col to the LED's position on the serpentine chain:
// even rows run left to right, odd rows right to left.
func Index(row, col int) int {
	if row%2 == 1 {
		return row*Cols + (Cols - 1 - col)
	}
	return row*Cols + col
}

// Render lays the frame for d out in wiring order.
func Render(d Digit) Buffer {
	var b Buffer
	f := FrameFor(d)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			b[Index(row, col)] = f.At(row, col)
		}
	}
	return b
}

// Lit returns the wiring positions that are on.
func (b Buffer) Lit() []int {
	r := make([]int, 0, NumPixels)
	for i, on := range b {
		if on {
			r = append(r, i)
		}
	}
	return r
}

// String draws the buffer five positions per line, in wiring order.
func (b Buffer) String() string {
	return picture(func(i int) bool { return b[i] })
}

// State is the board's shared counter and the buffer rendered from it.
// Both are replaced under one lock so readers never see them disagree.
type State struct {
	mu    sync.RWMutex
	digit Digit
	buf   Buffer
}

func NewState() *State {
	s := &State{}
	s.set(MinDigit)
	return s
}

func (s *State) set(d Digit) {
	s.digit = d
	s.buf = Render(d)
}

// Step adds delta to the digit, saturating at the bounds. It reports whether the
// digit changed; the buffer is only rewritten when it did.
func (s *State) Step(delta int) (Digit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Clamp(int(s.digit) + delta)
	if next == s.digit {
		return s.digit, false
	}
	s.set(next)
	return next, true
}

func (s *State) Digit() Digit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.digit
}

// Snapshot returns a copy of the current buffer.
func (s *State) Snapshot() Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf
}
