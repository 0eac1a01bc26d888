package main

import (
	"strings"
	"sync"

	"gochip8/pkg/chip8"
	"gochip8/pkg/grid"
	"gochip8/pkg/keypad"
)

// holdFrames is how long a key stays down after its byte arrives. Terminals
// report presses only, never releases.
const holdFrames = 6

const (
	ansiHome      = "\x1b[H"
	ansiClear     = "\x1b[2J"
	ansiHideCurs  = "\x1b[?25l"
	ansiShowCurs  = "\x1b[?25h"
	ansiClearLine = "\x1b[K"
)

// render draws the display with half-block characters, two pixel rows per
// text row. Lines end in CRLF for raw mode.
func render(d *chip8.Display) string {
	var sb strings.Builder
	cols := chip8.DisplayWidth
	rows := chip8.DisplayHeight / 2
	sb.Grow(rows * (cols*3 + 2))

	for i := 0; i < cols*rows; i++ {
		x, y := grid.GetGridCoords(i, cols)
		top := d.Pixel(x, y*2)
		bottom := d.Pixel(x, y*2+1)
		switch {
		case top && bottom:
			sb.WriteRune('█')
		case top:
			sb.WriteRune('▀')
		case bottom:
			sb.WriteRune('▄')
		default:
			sb.WriteByte(' ')
		}
		if x == cols-1 {
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}

// heldKeys turns key press bytes into held key state.
type heldKeys struct {
	frames [chip8.KeyCount]int
}

func (h *heldKeys) press(r rune) bool {
	idx, ok := keypad.IndexForRune(r)
	if ok {
		h.frames[idx] = holdFrames
	}
	return ok
}

// apply writes the current state to m and ages every held key by one frame.
func (h *heldKeys) apply(m *chip8.Machine) {
	for i := range h.frames {
		m.SetKey(uint8(i), h.frames[i] > 0)
		if h.frames[i] > 0 {
			h.frames[i]--
		}
	}
}

// bell is a Beeper that rings the terminal bell when the tone starts.
type bell struct {
	mu      sync.Mutex
	on      bool
	pending bool
}

func (b *bell) SetTone(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on && !b.on {
		b.pending = true
	}
	b.on = on
}

// take reports whether a ring is due and clears it.
func (b *bell) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ring := b.pending
	b.pending = false
	return ring
}
