package main

import (
	"bytes"
	"strings"
	"testing"

	"gochip8/pkg/chip8"
)

func newTestController(t *testing.T, b *bell, ops ...byte) *chip8.Controller {
	t.Helper()
	m, err := chip8.NewMachine(ops, chip8.Options{Beeper: b})
	if err != nil {
		t.Fatal(err)
	}
	return chip8.NewController(m, 600)
}

func TestRenderHalfBlocks(t *testing.T) {
	// Draw the glyph for 0 at the origin: rows F0 90 90 90 F0.
	ctrl := newTestController(t, &bell{}, 0xD0, 0x05, 0x12, 0x02)
	ctrl.RunFrame()

	out := render(&ctrl.Machine().Display)
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(lines) != chip8.DisplayHeight/2 {
		t.Fatalf("expected %d lines, got %d", chip8.DisplayHeight/2, len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != chip8.DisplayWidth {
			t.Fatalf("line %d: expected %d cells, got %d", i, chip8.DisplayWidth, n)
		}
	}

	want := []string{"█▀▀█", "█  █", "▀▀▀▀"}
	for i, w := range want {
		got := string([]rune(lines[i])[:4])
		if got != w {
			t.Errorf("line %d: expected %q, got %q", i, w, got)
		}
	}
	if strings.TrimRight(lines[3], " ") != "" {
		t.Errorf("line 3 should be blank, got %q", lines[3])
	}
}

func TestHeldKeysExpire(t *testing.T) {
	ctrl := newTestController(t, &bell{}, 0x12, 0x00)
	m := ctrl.Machine()
	var h heldKeys

	if !h.press('w') {
		t.Fatal("w should map to a keypad key")
	}
	if h.press('p') {
		t.Error("p should not map to a keypad key")
	}

	for i := 0; i < holdFrames; i++ {
		h.apply(m)
		if !m.Keypad[0x5] {
			t.Fatalf("frame %d: key 5 released early", i)
		}
	}
	h.apply(m)
	if m.Keypad[0x5] {
		t.Error("key 5 should be released after the hold expires")
	}
}

func TestPollCommands(t *testing.T) {
	b := &bell{}
	ctrl := newTestController(t, b, 0x12, 0x00)
	input := make(chan byte, 8)
	var out bytes.Buffer
	c := &console{out: &out, input: input, bell: b, state: chip8.Running}

	input <- ' '
	input <- '1'
	c.poll(ctrl)
	if ctrl.State() != chip8.Paused {
		t.Errorf("expected paused, got %v", ctrl.State())
	}
	if !ctrl.Machine().Keypad[0x1] {
		t.Error("key 1 should be held")
	}
	if !strings.Contains(out.String(), "PAUSED") {
		t.Errorf("status line missing: %q", out.String())
	}

	input <- 0x1b
	c.poll(ctrl)
	if ctrl.State() != chip8.Quit {
		t.Errorf("expected quit, got %v", ctrl.State())
	}
}

func TestPollQuitsOnClosedInput(t *testing.T) {
	b := &bell{}
	ctrl := newTestController(t, b, 0x12, 0x00)
	input := make(chan byte)
	close(input)
	c := &console{out: &bytes.Buffer{}, input: input, bell: b, state: chip8.Running}

	c.poll(ctrl)
	if ctrl.State() != chip8.Quit {
		t.Errorf("expected quit, got %v", ctrl.State())
	}
}

func TestBellRingsOnRisingEdge(t *testing.T) {
	// LD V0, 0x02; LD ST, V0; JP 0x204
	b := &bell{}
	ctrl := newTestController(t, b, 0x60, 0x02, 0xF0, 0x18, 0x12, 0x04)
	var out bytes.Buffer
	c := &console{out: &out, input: make(chan byte), bell: b, state: chip8.Running}

	ctrl.RunFrame()
	c.poll(ctrl)
	if got := strings.Count(out.String(), "\a"); got != 1 {
		t.Fatalf("expected 1 bell, got %d", got)
	}
	for i := 0; i < 3; i++ {
		ctrl.RunFrame()
		c.poll(ctrl)
	}
	if got := strings.Count(out.String(), "\a"); got != 1 {
		t.Errorf("bell should ring once per tone, got %d", got)
	}
}

func TestReadInputClosesOnEOF(t *testing.T) {
	ch := readInput(strings.NewReader("ab"))
	var got []byte
	for b := range ch {
		got = append(got, b)
	}
	if string(got) != "ab" {
		t.Errorf("expected %q, got %q", "ab", got)
	}
}
