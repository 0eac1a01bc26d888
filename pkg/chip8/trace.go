package chip8

import (
	"context"
	"fmt"
	"log/slog"
)

// TraceRecord describes one executed instruction. Description is rendered
// from the machine state before the instruction runs.
type TraceRecord struct {
	Addr        uint16
	Instruction Instruction
	Description string
}

func (m *Machine) traceRecord(addr uint16, ins Instruction) TraceRecord {
	return TraceRecord{
		Addr:        addr,
		Instruction: ins,
		Description: Describe(ins, m),
	}
}

// Describe renders a human readable description of ins. When m is non-nil
// the current register values are included.
func Describe(ins Instruction, m *Machine) string {
	x, y := ins.X, ins.Y
	vx := func() string {
		if m == nil {
			return fmt.Sprintf("V%X", x)
		}
		return fmt.Sprintf("V%X (0x%02X)", x, m.V[x])
	}
	vy := func() string {
		if m == nil {
			return fmt.Sprintf("V%X", y)
		}
		return fmt.Sprintf("V%X (0x%02X)", y, m.V[y])
	}

	switch ins.Family() {
	case 0x0:
		switch ins.NN {
		case 0xE0:
			return "Clear screen"
		case 0xEE:
			if m != nil {
				if ret, ok := m.Stack.Peek(); ok {
					return fmt.Sprintf("Return from subroutine to 0x%03X", ret)
				}
			}
			return "Return from subroutine"
		}
		return fmt.Sprintf("Call machine code routine at 0x%03X (treated as jump)", ins.NNN)
	case 0x1:
		return fmt.Sprintf("Jump to 0x%03X", ins.NNN)
	case 0x2:
		return fmt.Sprintf("Call subroutine at 0x%03X", ins.NNN)
	case 0x3:
		return fmt.Sprintf("Skip next if %s == 0x%02X", vx(), ins.NN)
	case 0x4:
		return fmt.Sprintf("Skip next if %s != 0x%02X", vx(), ins.NN)
	case 0x5:
		return fmt.Sprintf("Skip next if %s == %s", vx(), vy())
	case 0x6:
		return fmt.Sprintf("Set V%X = 0x%02X", x, ins.NN)
	case 0x7:
		return fmt.Sprintf("Set %s += 0x%02X", vx(), ins.NN)
	case 0x8:
		switch ins.N {
		case 0x0:
			return fmt.Sprintf("Set V%X = %s", x, vy())
		case 0x1:
			return fmt.Sprintf("Set %s |= %s", vx(), vy())
		case 0x2:
			return fmt.Sprintf("Set %s &= %s", vx(), vy())
		case 0x3:
			return fmt.Sprintf("Set %s ^= %s", vx(), vy())
		case 0x4:
			return fmt.Sprintf("Set %s += %s, VF = carry", vx(), vy())
		case 0x5:
			return fmt.Sprintf("Set %s -= %s, VF = no borrow", vx(), vy())
		case 0x6:
			return fmt.Sprintf("Set %s >>= 1, VF = shifted out bit", vx())
		case 0x7:
			return fmt.Sprintf("Set V%X = %s - %s, VF = no borrow", x, vy(), vx())
		case 0xE:
			return fmt.Sprintf("Set %s <<= 1, VF = shifted out bit", vx())
		}
	case 0x9:
		return fmt.Sprintf("Skip next if %s != %s", vx(), vy())
	case 0xA:
		return fmt.Sprintf("Set I = 0x%03X", ins.NNN)
	case 0xB:
		if m != nil {
			return fmt.Sprintf("Jump to 0x%03X + V0 (0x%02X)", ins.NNN, m.V[0])
		}
		return fmt.Sprintf("Jump to 0x%03X + V0", ins.NNN)
	case 0xC:
		return fmt.Sprintf("Set V%X = random & 0x%02X", x, ins.NN)
	case 0xD:
		if m != nil {
			return fmt.Sprintf("Draw %d row sprite at %s, %s from I (0x%03X)", ins.N, vx(), vy(), m.I)
		}
		return fmt.Sprintf("Draw %d row sprite at %s, %s from I", ins.N, vx(), vy())
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return fmt.Sprintf("Skip next if key %s is down", vx())
		case 0xA1:
			return fmt.Sprintf("Skip next if key %s is up", vx())
		}
	case 0xF:
		switch ins.NN {
		case 0x07:
			return fmt.Sprintf("Set V%X = delay timer", x)
		case 0x0A:
			return fmt.Sprintf("Wait for key press, store in V%X", x)
		case 0x15:
			return fmt.Sprintf("Set delay timer = %s", vx())
		case 0x18:
			return fmt.Sprintf("Set sound timer = %s", vx())
		case 0x1E:
			return fmt.Sprintf("Set I += %s", vx())
		case 0x29:
			return fmt.Sprintf("Set I = glyph for %s", vx())
		case 0x33:
			return fmt.Sprintf("Store BCD of %s at I", vx())
		case 0x55:
			return fmt.Sprintf("Store V0..V%X at I", x)
		case 0x65:
			return fmt.Sprintf("Load V0..V%X from I", x)
		}
	}
	return "Unimplemented or invalid opcode"
}

// SlogTracer writes every TraceRecord to a logger at debug level.
type SlogTracer struct {
	Logger *slog.Logger
}

func NewSlogTracer(logger *slog.Logger) *SlogTracer {
	return &SlogTracer{Logger: logger}
}

func (t *SlogTracer) Trace(rec TraceRecord) {
	if !t.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	ins := rec.Instruction
	t.Logger.Debug("exec",
		"addr", fmt.Sprintf("0x%03X", rec.Addr),
		"opcode", fmt.Sprintf("0x%04X", ins.Opcode),
		slog.Group("fields",
			"nnn", fmt.Sprintf("0x%03X", ins.NNN),
			"nn", fmt.Sprintf("0x%02X", ins.NN),
			"n", ins.N,
			"x", ins.X,
			"y", ins.Y,
		),
		"desc", rec.Description,
	)
}

// TraceFunc adapts a plain function into a Tracer.
type TraceFunc func(rec TraceRecord)

func (f TraceFunc) Trace(rec TraceRecord) {
	f(rec)
}
