package chip8

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) skip() {
	m.PC = (m.PC + 2) & addrMask
}

func (m *Machine) keyDown(v byte) bool {
	return v < KeyCount && m.Keypad[v]
}

// 00E0
func opClear(m *Machine, _ Instruction) {
	m.Display.Clear()
}

// 00EE
func opReturn(m *Machine, _ Instruction) {
	addr, err := m.Stack.Pop()
	if err != nil {
		m.stackFault(err, (m.PC-2)&addrMask)
		return
	}
	m.PC = addr
}

// 0NNN
func opSys(m *Machine, ins Instruction) {
	m.PC = ins.NNN
}

// 1NNN
func opJump(m *Machine, ins Instruction) {
	m.PC = ins.NNN
}

// 2NNN
func opCall(m *Machine, ins Instruction) {
	if err := m.Stack.Push(m.PC); err != nil {
		m.stackFault(err, (m.PC-2)&addrMask)
		return
	}
	m.PC = ins.NNN
}

// 3XNN
func opSkipEqualImm(m *Machine, ins Instruction) {
	if m.V[ins.X] == ins.NN {
		m.skip()
	}
}

// 4XNN
func opSkipNotEqualImm(m *Machine, ins Instruction) {
	if m.V[ins.X] != ins.NN {
		m.skip()
	}
}

// 5XY0
func opSkipEqualReg(m *Machine, ins Instruction) {
	if m.V[ins.X] == m.V[ins.Y] {
		m.skip()
	}
}

// 6XNN
func opLoadImm(m *Machine, ins Instruction) {
	m.V[ins.X] = ins.NN
}

// 7XNN, no carry.
func opAddImm(m *Machine, ins Instruction) {
	m.V[ins.X] += ins.NN
}

// 8XY0
func opMove(m *Machine, ins Instruction) {
	m.V[ins.X] = m.V[ins.Y]
}

// 8XY1
func opOr(m *Machine, ins Instruction) {
	m.V[ins.X] |= m.V[ins.Y]
}

// 8XY2
func opAnd(m *Machine, ins Instruction) {
	m.V[ins.X] &= m.V[ins.Y]
}

// 8XY3
func opXor(m *Machine, ins Instruction) {
	m.V[ins.X] ^= m.V[ins.Y]
}

// flagged stores a flag-setting result in VX. f must be computed from the
// operands before the call; result runs after VF is written unless
// FlagAfterResult is set.
func (m *Machine) flagged(x uint8, f byte, result func() byte) {
	if m.quirks.FlagAfterResult {
		m.V[x] = result()
		m.V[0xF] = f
		return
	}
	m.V[0xF] = f
	m.V[x] = result()
}

func (m *Machine) shiftSource(ins Instruction) byte {
	if m.quirks.ShiftUsesVY {
		return m.V[ins.Y]
	}
	return m.V[ins.X]
}

// 8XY4
func opAddReg(m *Machine, ins Instruction) {
	sum := uint16(m.V[ins.X]) + uint16(m.V[ins.Y])
	m.V[ins.X] = byte(sum)
	m.V[0xF] = flag(sum > 0xFF)
}

// 8XY5
func opSub(m *Machine, ins Instruction) {
	m.flagged(ins.X, flag(m.V[ins.X] > m.V[ins.Y]), func() byte {
		return m.V[ins.X] - m.V[ins.Y]
	})
}

// 8XY6
func opShiftRight(m *Machine, ins Instruction) {
	m.flagged(ins.X, m.shiftSource(ins)&0x01, func() byte {
		return m.shiftSource(ins) >> 1
	})
}

// 8XY7
func opSubReverse(m *Machine, ins Instruction) {
	m.flagged(ins.X, flag(m.V[ins.Y] > m.V[ins.X]), func() byte {
		return m.V[ins.Y] - m.V[ins.X]
	})
}

// 8XYE
func opShiftLeft(m *Machine, ins Instruction) {
	m.flagged(ins.X, m.shiftSource(ins)>>7, func() byte {
		return m.shiftSource(ins) << 1
	})
}

// 9XY0
func opSkipNotEqualReg(m *Machine, ins Instruction) {
	if m.V[ins.X] != m.V[ins.Y] {
		m.skip()
	}
}

// ANNN
func opLoadIndex(m *Machine, ins Instruction) {
	m.I = ins.NNN
}

// BNNN
func opJumpV0(m *Machine, ins Instruction) {
	m.PC = (ins.NNN + uint16(m.V[0])) & addrMask
}

// CXNN
func opRandom(m *Machine, ins Instruction) {
	m.V[ins.X] = m.random.Byte() & ins.NN
}

// EX9E
func opSkipKeyDown(m *Machine, ins Instruction) {
	if m.keyDown(m.V[ins.X]) {
		m.skip()
	}
}

// EXA1
func opSkipKeyUp(m *Machine, ins Instruction) {
	if !m.keyDown(m.V[ins.X]) {
		m.skip()
	}
}

// FX07
func opReadDelay(m *Machine, ins Instruction) {
	m.V[ins.X] = m.DelayTimer
}

// FX0A stores the lowest pressed key, or blocks until one is pressed.
func opWaitKey(m *Machine, ins Instruction) {
	for k, down := range m.Keypad {
		if down {
			m.V[ins.X] = uint8(k)
			return
		}
	}
	m.awaitingKey = true
	m.keyRegister = ins.X
}

// FX15
func opSetDelay(m *Machine, ins Instruction) {
	m.DelayTimer = m.V[ins.X]
}

// FX18
func opSetSound(m *Machine, ins Instruction) {
	m.SoundTimer = m.V[ins.X]
}

// FX1E, VF untouched.
func opAddIndex(m *Machine, ins Instruction) {
	m.I += uint16(m.V[ins.X])
}

// FX29
func opGlyph(m *Machine, ins Instruction) {
	m.I = GlyphAddress(m.V[ins.X])
}

// FX33
func opBCD(m *Machine, ins Instruction) {
	v := m.V[ins.X]
	m.writeByte(m.I, v/100)
	m.writeByte(m.I+1, v/10%10)
	m.writeByte(m.I+2, v%10)
}

// FX55, I unchanged.
func opStoreRegs(m *Machine, ins Instruction) {
	for r := uint16(0); r <= uint16(ins.X); r++ {
		m.writeByte(m.I+r, m.V[r])
	}
}

// FX65, I unchanged.
func opLoadRegs(m *Machine, ins Instruction) {
	for r := uint16(0); r <= uint16(ins.X); r++ {
		m.V[r] = m.readByte(m.I + r)
	}
}
