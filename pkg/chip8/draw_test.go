package chip8

import "testing"

func TestDrawTwiceRestores(t *testing.T) {
	// Draw glyph 0 at (0,0) twice.
	m := newTestMachine(t,
		0xA000, // I = glyph 0
		0xD015, // draw 5 rows at V0,V1
		0xD015,
	)
	stepN(m, 2)

	if m.V[0xF] != 0 {
		t.Errorf("first draw: expected VF 0, got %d", m.V[0xF])
	}
	if !m.Display.Pixel(0, 0) || !m.Display.Pixel(3, 0) || m.Display.Pixel(1, 1) {
		t.Error("first draw: glyph 0 not rendered as expected")
	}
	if lit := m.Display.Lit(); lit != 14 {
		t.Errorf("first draw: expected 14 lit pixels, got %d", lit)
	}
	if !m.Display.TakeDirty() {
		t.Error("draw did not mark display dirty")
	}

	m.Step()
	if m.V[0xF] != 1 {
		t.Errorf("second draw: expected collision VF 1, got %d", m.V[0xF])
	}
	if lit := m.Display.Lit(); lit != 0 {
		t.Errorf("second draw: expected blank display, %d pixels lit", lit)
	}
}

func TestDrawClipsAtEdges(t *testing.T) {
	m := newTestMachine(t, 0xA300, 0xD014)
	m.Memory[0x300] = 0xFF
	m.Memory[0x301] = 0xFF
	m.Memory[0x302] = 0xFF
	m.Memory[0x303] = 0xFF
	m.V[0], m.V[1] = 60, 30
	stepN(m, 2)

	// 4 columns (60..63) by 2 rows (30..31).
	if lit := m.Display.Lit(); lit != 8 {
		t.Errorf("expected 8 lit pixels after clipping, got %d", lit)
	}
	if m.Display.Pixel(0, 0) || m.Display.Pixel(0, 30) {
		t.Error("sprite wrapped onto the left edge")
	}
	if !m.Display.Pixel(63, 31) {
		t.Error("bottom right pixel should be lit")
	}
}

func TestDrawOriginWraps(t *testing.T) {
	m := newTestMachine(t, 0xA300, 0xD011)
	m.Memory[0x300] = 0x80
	m.V[0], m.V[1] = 64+5, 32+2
	stepN(m, 2)

	if !m.Display.Pixel(5, 2) {
		t.Error("origin should wrap to (5, 2)")
	}
	if m.Display.Lit() != 1 {
		t.Errorf("expected 1 lit pixel, got %d", m.Display.Lit())
	}
}

func TestDrawZeroRows(t *testing.T) {
	m := newTestMachine(t, 0xD010)
	m.V[0xF] = 1
	m.Step()
	if m.V[0xF] != 0 {
		t.Errorf("VF: expected 0, got %d", m.V[0xF])
	}
	if m.Display.Lit() != 0 {
		t.Error("zero-row sprite drew pixels")
	}
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0xA000, 0xD005, 0x00E0)
	stepN(m, 2)
	m.Display.TakeDirty()
	m.Step()
	if m.Display.Lit() != 0 {
		t.Error("00E0 left pixels lit")
	}
	if !m.Display.Dirty() {
		t.Error("00E0 did not mark display dirty")
	}
}
