package chip8

import "fmt"

type opFunc func(m *Machine, ins Instruction)

// primary holds the families whose top nibble alone selects the effect.
var primary = [16]opFunc{
	0x1: opJump,
	0x2: opCall,
	0x3: opSkipEqualImm,
	0x4: opSkipNotEqualImm,
	0x5: opSkipEqualReg,
	0x6: opLoadImm,
	0x7: opAddImm,
	0x9: opSkipNotEqualReg,
	0xA: opLoadIndex,
	0xB: opJumpV0,
	0xC: opRandom,
	0xD: opDraw,
}

// secondary holds the families that dispatch again on NN (0x0, 0xE, 0xF) or
// on N (0x8).
var secondary = map[uint8]map[uint8]opFunc{
	0x0: {
		0xE0: opClear,
		0xEE: opReturn,
	},
	0x8: {
		0x0: opMove,
		0x1: opOr,
		0x2: opAnd,
		0x3: opXor,
		0x4: opAddReg,
		0x5: opSub,
		0x6: opShiftRight,
		0x7: opSubReverse,
		0xE: opShiftLeft,
	},
	0xE: {
		0x9E: opSkipKeyDown,
		0xA1: opSkipKeyUp,
	},
	0xF: {
		0x07: opReadDelay,
		0x0A: opWaitKey,
		0x15: opSetDelay,
		0x18: opSetSound,
		0x1E: opAddIndex,
		0x29: opGlyph,
		0x33: opBCD,
		0x55: opStoreRegs,
		0x65: opLoadRegs,
	},
}

func lookup(ins Instruction) (opFunc, bool) {
	family := ins.Family()
	if table, ok := secondary[family]; ok {
		key := ins.NN
		if family == 0x8 {
			key = ins.N
		}
		if fn, ok := table[key]; ok {
			return fn, true
		}
		if family == 0x0 {
			// 0NNN machine-code call, treated as a jump.
			return opSys, true
		}
		return nil, false
	}
	fn := primary[family]
	return fn, fn != nil
}

// Known reports whether op is part of the base CHIP-8 instruction set.
func Known(op uint16) bool {
	_, ok := lookup(Decode(op))
	return ok
}

// Step executes one instruction. While FX0A is blocking, it polls the keypad
// instead of fetching.
func (m *Machine) Step() {
	if m.awaitingKey {
		m.resolveKeyWait()
		return
	}

	addr := m.PC
	ins := Decode(m.Fetch())
	m.PC = (m.PC + 2) & addrMask

	fn, ok := lookup(ins)
	if m.tracer != nil {
		m.tracer.Trace(m.traceRecord(addr, ins))
	}
	if !ok {
		m.logger.Debug("unknown opcode",
			"addr", fmt.Sprintf("0x%03X", addr),
			"opcode", fmt.Sprintf("0x%04X", ins.Opcode))
		return
	}
	fn(m, ins)
}

func (m *Machine) resolveKeyWait() {
	for k, down := range m.Keypad {
		if down {
			m.V[m.keyRegister] = uint8(k)
			m.awaitingKey = false
			return
		}
	}
}

// stackFault records a dropped call or return.
func (m *Machine) stackFault(err error, addr uint16) {
	m.stackFaults++
	m.logger.Warn("stack fault",
		"err", err,
		"addr", fmt.Sprintf("0x%03X", addr),
		"depth", m.Stack.Depth())
}
