package main

import (
	"bytes"
	"testing"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
)

const fibProgram = `
; Tenth Fibonacci number, shown as a digit on screen.
    LD V0, 0
    LD V1, 1
    LD V2, 10
loop:
    LD V3, V0
    ADD V3, V1
    LD V0, V1
    LD V1, V3
    ADD V2, 0xFF
    SE V2, 0
    JP loop

    LD I, digits
    LD B, V0
    LD V2, [I]
    LD F, V2
    LD V4, 0
    LD V5, 0
    DRW V4, V5, 5
end:
    JP end

digits: .BYTE 0, 0, 0
`

func TestAssembleAndRun(t *testing.T) {
	// 1. Assemble
	rom, sourceMap, err := asm.Assemble(fibProgram)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	if len(sourceMap) == 0 {
		t.Fatal("expected a source map")
	}

	// 2. Load
	m, err := chip8.NewMachine(rom, chip8.Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 3. Run through the controller
	ctrl := chip8.NewController(m, 600)
	for i := 0; i < 30; i++ {
		ctrl.RunFrame()
	}

	// 4. Assertions

	// BCD of 55 is 0 5 5, loaded back into V0..V2.
	if m.V[0] != 0 || m.V[1] != 5 || m.V[2] != 5 {
		t.Errorf("Expected V0..V2 = 0 5 5, got %d %d %d", m.V[0], m.V[1], m.V[2])
	}
	digits := chip8.ProgramStart + uint16(len(rom)) - 3
	if got := m.Memory[digits : digits+3]; !bytes.Equal(got, []byte{0, 5, 5}) {
		t.Errorf("Expected BCD bytes 0 5 5, got %v", got)
	}

	// Glyph 5 is F0 80 F0 10 F0.
	if lit := m.Display.Lit(); lit != 14 {
		t.Errorf("Expected 14 lit pixels, got %d", lit)
	}
	if !m.Display.Pixel(0, 1) || m.Display.Pixel(3, 1) || !m.Display.Pixel(3, 3) {
		t.Error("Display does not show glyph 5")
	}
	if m.V[0xF] != 0 {
		t.Errorf("Expected no collision, got VF=%d", m.V[0xF])
	}

	// The program parks on its final jump.
	endAddr := chip8.ProgramStart + uint16(len(rom)) - 5
	if m.PC != endAddr {
		t.Errorf("Expected PC at 0x%03X, got 0x%03X", endAddr, m.PC)
	}
	if m.StackFaults() != 0 {
		t.Errorf("Expected no stack faults, got %d", m.StackFaults())
	}
}

func TestDisassemblyReassembles(t *testing.T) {
	rom, _, err := asm.Assemble(fibProgram)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	again, _, err := asm.Assemble(asm.Source(rom))
	if err != nil {
		t.Fatalf("Reassembly failed: %v\n%s", err, asm.Source(rom))
	}
	if !bytes.Equal(rom, again) {
		t.Errorf("Reassembled ROM differs:\n% X\n% X", rom, again)
	}
}

const keyProgram = `
    LD V0, K
    ADD V0, 1
    LD ST, V0
halt:
    JP halt
`

func TestKeyWaitSurvivesSnapshot(t *testing.T) {
	rom, _, err := asm.Assemble(keyProgram)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	m, err := chip8.NewMachine(rom, chip8.Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ctrl := chip8.NewController(m, 600)

	// 1. Block on the key wait
	ctrl.RunFrame()
	if waiting, _ := m.AwaitingKey(); !waiting {
		t.Fatal("Expected the machine to wait for a key")
	}
	snap, err := m.SnapshotToBytes()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	// 2. Resume the first machine with key 7
	m.SetKey(7, true)
	ctrl.RunFrame()
	if m.V[0] != 8 {
		t.Errorf("Expected V0=8, got %d", m.V[0])
	}

	// 3. Restore into a fresh machine and resume with keys 3 and 9
	other, err := chip8.NewMachine(nil, chip8.Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := other.RestoreFromBytes(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if waiting, _ := other.AwaitingKey(); !waiting {
		t.Fatal("Expected the restored machine to still wait for a key")
	}
	other.SetKey(9, true)
	other.SetKey(3, true)
	chip8.NewController(other, 600).RunFrame()
	if other.V[0] != 4 {
		t.Errorf("Expected lowest key to win with V0=4, got %d", other.V[0])
	}
	if other.SoundTimer != 3 {
		t.Errorf("Expected sound timer 3 after one tick, got %d", other.SoundTimer)
	}
}
