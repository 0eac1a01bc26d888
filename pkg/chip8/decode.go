package chip8

import "fmt"

// Instruction is a decoded opcode. Every 16-bit value decodes.
type Instruction struct {
	Opcode uint16
	NNN    uint16 // 12-bit address
	NN     uint8  // 8-bit constant
	N      uint8  // 4-bit constant
	X      uint8  // register index, bits 8-11
	Y      uint8  // register index, bits 4-7
}

func Decode(op uint16) Instruction {
	return Instruction{
		Opcode: op,
		NNN:    op & 0x0FFF,
		NN:     uint8(op & 0x00FF),
		N:      uint8(op & 0x000F),
		X:      uint8((op >> 8) & 0x0F),
		Y:      uint8((op >> 4) & 0x0F),
	}
}

// Family is the top nibble, the primary dispatch key.
func (ins Instruction) Family() uint8 {
	return uint8(ins.Opcode >> 12)
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%04X", ins.Opcode)
}

// EncodeInstruction packs a family nibble and three 4-bit fields into an
// opcode. Each field is masked to 4 bits.
func EncodeInstruction(family uint8, x, y, n uint8) uint16 {
	return uint16(family&0x0F)<<12 | uint16(x&0x0F)<<8 | uint16(y&0x0F)<<4 | uint16(n&0x0F)
}
