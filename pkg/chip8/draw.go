package chip8

// opDraw implements DXYN: XOR an 8xN sprite read from memory at I onto the
// display at (VX mod 64, VY mod 32). Sprites clip at the right and bottom
// edges rather than wrapping. VF ends up 1 if any lit pixel was turned off.
func opDraw(m *Machine, ins Instruction) {
	ox := int(m.V[ins.X]) % DisplayWidth
	oy := int(m.V[ins.Y]) % DisplayHeight

	m.V[0xF] = 0

	for r := 0; r < int(ins.N); r++ {
		y := oy + r
		if y >= DisplayHeight {
			break
		}
		row := m.readByte(m.I + uint16(r))

		for b := 7; b >= 0; b-- {
			x := ox + (7 - b)
			if x >= DisplayWidth {
				break
			}
			if row&(1<<b) == 0 {
				continue
			}
			if m.Display.xor(x, y) {
				m.V[0xF] = 1
			}
		}
	}

	m.Display.dirty = true
}
