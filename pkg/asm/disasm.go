package asm

import (
	"fmt"
	"gochip8/pkg/chip8"
	"strings"
)

// FormatInstruction renders op in the syntax Assemble accepts, so the result
// always assembles back to op. Opcodes outside the base set become .WORD.
func FormatInstruction(op uint16) string {
	ins := chip8.Decode(op)
	x, y := ins.X, ins.Y

	switch ins.Family() {
	case 0x0:
		switch op {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
		return fmt.Sprintf("SYS 0x%03X", ins.NNN)
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", ins.NNN)
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", ins.NNN)
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, ins.NN)
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, ins.NN)
	case 0x5:
		if ins.N == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, ins.NN)
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, ins.NN)
	case 0x8:
		switch ins.N {
		case 0x0:
			return fmt.Sprintf("LD V%X, V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR V%X, V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND V%X, V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR V%X, V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD V%X, V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB V%X, V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR V%X, V%X", x, y)
		case 0x7:
			return fmt.Sprintf("SUBN V%X, V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL V%X, V%X", x, y)
		}
	case 0x9:
		if ins.N == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", ins.NNN)
	case 0xB:
		return fmt.Sprintf("JP V0, 0x%03X", ins.NNN)
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, ins.NN)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, 0x%X", x, y, ins.N)
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		switch ins.NN {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD I, V%X", x)
		case 0x29:
			return fmt.Sprintf("LD F, V%X", x)
		case 0x33:
			return fmt.Sprintf("LD B, V%X", x)
		case 0x55:
			return fmt.Sprintf("LD [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}
	return fmt.Sprintf(".WORD 0x%04X", op)
}

// Disassemble lists rom as if loaded at Origin, one "addr opcode text" line
// per word. A trailing odd byte is emitted as .BYTE.
func Disassemble(rom []byte) string {
	var sb strings.Builder
	addr := uint16(Origin)
	for i := 0; i+1 < len(rom); i += 2 {
		op := uint16(rom[i])<<8 | uint16(rom[i+1])
		fmt.Fprintf(&sb, "%03X  %04X  %s\n", addr, op, FormatInstruction(op))
		addr += 2
	}
	if len(rom)%2 == 1 {
		last := rom[len(rom)-1]
		fmt.Fprintf(&sb, "%03X  %02X    .BYTE 0x%02X\n", addr, last, last)
	}
	return sb.String()
}

// Source renders rom as assembler input: an .ORG-free listing that Assemble
// turns back into the same bytes.
func Source(rom []byte) string {
	var sb strings.Builder
	for i := 0; i+1 < len(rom); i += 2 {
		op := uint16(rom[i])<<8 | uint16(rom[i+1])
		fmt.Fprintf(&sb, "    %s ; %03X\n", FormatInstruction(op), Origin+i)
	}
	if len(rom)%2 == 1 {
		fmt.Fprintf(&sb, "    .BYTE 0x%02X\n", rom[len(rom)-1])
	}
	return sb.String()
}
