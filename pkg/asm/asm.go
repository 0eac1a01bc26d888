package asm

import (
	"fmt"
	"gochip8/pkg/chip8"
	"strconv"
	"strings"
	"unicode"
)

// Origin is the address of the first assembled byte.
const Origin = chip8.ProgramStart

// mnemonics lists every instruction name. All CHIP-8 instructions are 2 bytes.
var mnemonics = map[string]bool{
	"CLS": true, "RET": true, "SYS": true, "JP": true, "CALL": true,
	"SE": true, "SNE": true, "LD": true, "ADD": true,
	"OR": true, "AND": true, "XOR": true, "SUB": true, "SUBN": true,
	"SHR": true, "SHL": true, "RND": true, "DRW": true,
	"SKP": true, "SKNP": true,
}

// aluOps are the 8XYN register-register forms.
var aluOps = map[string]uint8{
	"OR":   0x1,
	"AND":  0x2,
	"XOR":  0x3,
	"SUB":  0x5,
	"SUBN": 0x7,
}

// storeOps are the FX__ forms whose destination is a special name.
var storeOps = map[string]uint16{
	"DT":  0x15,
	"ST":  0x18,
	"F":   0x29,
	"B":   0x33,
	"[I]": 0x55,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble returns the ROM image (to be loaded at Origin) and a map from
// absolute address to source line.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(Origin)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			if isReserved(key) {
				return fmt.Errorf("label '%s' on line %d shadows a register name", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		var length uint32
		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, address, lineNo)
			if err != nil {
				return err
			}
			address = target
			continue
		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands))
		case ".WORD":
			if len(p.operands) == 0 {
				return fmt.Errorf(".WORD expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands)) * 2
		default:
			n, ok := instructionLength(p.mnemonic)
			if !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = uint32(n)
		}

		if address+length > chip8.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		address := uint32(Origin + len(program))

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, address, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-address)...)
			continue
		case ".BYTE":
			sourceMap[uint16(address)] = lineNo
			for _, op := range p.operands {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue
		case ".WORD":
			sourceMap[uint16(address)] = lineNo
			for _, op := range p.operands {
				val, err := a.parseValue(op, 0xFFFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}
			continue
		}

		instr, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		sourceMap[uint16(address)] = lineNo
		program = append(program, byte(instr>>8), byte(instr))
	}

	return program, sourceMap, nil
}

// encode turns one instruction line into its opcode.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	ops := p.operands
	lineNo := p.lineNo

	expect := func(counts ...int) error {
		for _, c := range counts {
			if len(ops) == c {
				return nil
			}
		}
		return fmt.Errorf("%s expects %s operands on line %d", p.mnemonic, joinCounts(counts), lineNo)
	}

	switch p.mnemonic {
	case "CLS", "RET":
		if err := expect(0); err != nil {
			return 0, err
		}
		if p.mnemonic == "CLS" {
			return 0x00E0, nil
		}
		return 0x00EE, nil

	case "SYS", "CALL":
		if err := expect(1); err != nil {
			return 0, err
		}
		addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		if p.mnemonic == "SYS" {
			return withAddr(0x0, addr), nil
		}
		return withAddr(0x2, addr), nil

	case "JP":
		if err := expect(1, 2); err != nil {
			return 0, err
		}
		if len(ops) == 2 {
			if x, err := parseRegister(ops[0], lineNo); err != nil || x != 0 {
				return 0, fmt.Errorf("JP with offset must use V0 on line %d", lineNo)
			}
			addr, err := a.parseValue(ops[1], 0xFFF, lineNo)
			if err != nil {
				return 0, err
			}
			return withAddr(0xB, addr), nil
		}
		addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return withAddr(0x1, addr), nil

	case "SE", "SNE":
		if err := expect(2); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if isRegister(ops[1]) {
			y, _ := parseRegister(ops[1], lineNo)
			if p.mnemonic == "SE" {
				return chip8.EncodeInstruction(0x5, x, y, 0), nil
			}
			return chip8.EncodeInstruction(0x9, x, y, 0), nil
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		if p.mnemonic == "SE" {
			return withByte(0x3, x, nn), nil
		}
		return withByte(0x4, x, nn), nil

	case "LD":
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeLoad(ops[0], ops[1], lineNo)

	case "ADD":
		if err := expect(2); err != nil {
			return 0, err
		}
		if strings.EqualFold(ops[0], "I") {
			x, err := parseRegister(ops[1], lineNo)
			if err != nil {
				return 0, err
			}
			return withByte(0xF, x, 0x1E), nil
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if isRegister(ops[1]) {
			y, _ := parseRegister(ops[1], lineNo)
			return chip8.EncodeInstruction(0x8, x, y, 0x4), nil
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return withByte(0x7, x, nn), nil

	case "OR", "AND", "XOR", "SUB", "SUBN":
		if err := expect(2); err != nil {
			return 0, err
		}
		x, y, err := parseRegisterPair(ops[0], ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return chip8.EncodeInstruction(0x8, x, y, aluOps[p.mnemonic]), nil

	case "SHR", "SHL":
		if err := expect(1, 2); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		var y uint8
		if len(ops) == 2 {
			if y, err = parseRegister(ops[1], lineNo); err != nil {
				return 0, err
			}
		}
		if p.mnemonic == "SHR" {
			return chip8.EncodeInstruction(0x8, x, y, 0x6), nil
		}
		return chip8.EncodeInstruction(0x8, x, y, 0xE), nil

	case "RND":
		if err := expect(2); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return withByte(0xC, x, nn), nil

	case "DRW":
		if err := expect(3); err != nil {
			return 0, err
		}
		x, y, err := parseRegisterPair(ops[0], ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseValue(ops[2], 0xF, lineNo)
		if err != nil {
			return 0, err
		}
		return chip8.EncodeInstruction(0xD, x, y, uint8(n)), nil

	case "SKP", "SKNP":
		if err := expect(1); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if p.mnemonic == "SKP" {
			return withByte(0xE, x, 0x9E), nil
		}
		return withByte(0xE, x, 0xA1), nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
}

// encodeLoad handles the many LD forms. Special destinations are matched
// before registers and values.
func (a *Assembler) encodeLoad(dst, src string, lineNo int) (uint16, error) {
	switch strings.ToUpper(dst) {
	case "I":
		addr, err := a.parseValue(src, 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return withAddr(0xA, addr), nil
	case "DT", "ST", "F", "B", "[I]":
		x, err := parseRegister(src, lineNo)
		if err != nil {
			return 0, err
		}
		return withByte(0xF, x, storeOps[strings.ToUpper(dst)]), nil
	}

	x, err := parseRegister(dst, lineNo)
	if err != nil {
		return 0, err
	}
	switch strings.ToUpper(src) {
	case "DT":
		return withByte(0xF, x, 0x07), nil
	case "K":
		return withByte(0xF, x, 0x0A), nil
	case "[I]":
		return withByte(0xF, x, 0x65), nil
	}
	if isRegister(src) {
		y, _ := parseRegister(src, lineNo)
		return chip8.EncodeInstruction(0x8, x, y, 0x0), nil
	}
	nn, err := a.parseValue(src, 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return withByte(0x6, x, nn), nil
}

func withAddr(family uint8, nnn uint16) uint16 {
	return chip8.EncodeInstruction(family, uint8(nnn>>8), uint8(nnn>>4), uint8(nnn))
}

func withByte(family, x uint8, nn uint16) uint16 {
	return chip8.EncodeInstruction(family, x, uint8(nn>>4), uint8(nn))
}

func parseOrigin(ops []string, address uint32, lineNo int) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := strconv.ParseUint(ops[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target >= chip8.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	if uint32(target) < address {
		return 0, fmt.Errorf("cannot move origin backward on line %d", lineNo)
	}
	return uint32(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

func isRegister(token string) bool {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return false
	}
	_, err := strconv.ParseUint(token[1:], 16, 8)
	return err == nil
}

func parseRegister(token string, lineNo int) (uint8, error) {
	if !isRegister(token) {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	v, _ := strconv.ParseUint(token[1:], 16, 8)
	return uint8(v), nil
}

func parseRegisterPair(a, b string, lineNo int) (uint8, uint8, error) {
	x, err := parseRegister(a, lineNo)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseRegister(b, lineNo)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseValue resolves a numeric literal or label and checks it fits in limit.
func (a *Assembler) parseValue(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("value out of range on line %d: %s (max 0x%X)", lineNo, token, limit)
		}
		return uint16(value), nil
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' (0x%03X) out of range on line %d", token, addr, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid value '%s' on line %d", token, lineNo)
}

func instructionLength(mnemonic string) (uint16, bool) {
	if mnemonics[strings.ToUpper(mnemonic)] {
		return 2, true
	}
	return 0, false
}

func isReserved(label string) bool {
	switch label {
	case "I", "DT", "ST", "K", "F", "B":
		return true
	}
	return isRegister(label)
}

func joinCounts(counts []int) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, " or ")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
