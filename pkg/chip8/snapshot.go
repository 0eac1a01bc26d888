package chip8

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

const snapshotVersion = 1

var ErrBadSnapshot = errors.New("bad snapshot")

// machineState is the JSON-serializable snapshot of registers and control
// state. Memory and display travel as separate binary entries.
type machineState struct {
	Version     int                 `json:"version"`
	V           [RegisterCount]byte `json:"v"`
	I           uint16              `json:"i"`
	PC          uint16              `json:"pc"`
	DelayTimer  byte                `json:"delay_timer"`
	SoundTimer  byte                `json:"sound_timer"`
	Stack       []uint16            `json:"stack"`
	Keypad      [KeyCount]bool      `json:"keypad"`
	AwaitingKey bool                `json:"awaiting_key"`
	KeyRegister uint8               `json:"key_register"`
	Quirks      quirksState         `json:"quirks"`
}

type quirksState struct {
	ShiftUsesVY     bool   `json:"shift_uses_vy"`
	FlagAfterResult bool   `json:"flag_after_result"`
	Memory          string `json:"memory"`
}

// SnapshotToBytes serialises the machine into an in-memory ZIP archive.
func (m *Machine) SnapshotToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		Version:     snapshotVersion,
		V:           m.V,
		I:           m.I,
		PC:          m.PC,
		DelayTimer:  m.DelayTimer,
		SoundTimer:  m.SoundTimer,
		Stack:       m.Stack.Entries(),
		Keypad:      m.Keypad,
		AwaitingKey: m.awaitingKey,
		KeyRegister: m.keyRegister,
		Quirks: quirksState{
			ShiftUsesVY:     m.quirks.ShiftUsesVY,
			FlagAfterResult: m.quirks.FlagAfterResult,
			Memory:          m.quirks.Memory.String(),
		},
	}

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal machine_state: %w", err)
	}
	if err := writeZipEntry(zw, "machine_state.json", jsonData); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "memory.bin", m.Memory[:]); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "display.bin", packPixels(&m.Display)); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "rom.bin", m.rom); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by SnapshotToBytes. The
// machine is left untouched if the archive is malformed.
func (m *Machine) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: open zip: %w", ErrBadSnapshot, err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "machine_state.json")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("%w: unmarshal machine_state: %w", ErrBadSnapshot, err)
	}
	if state.Version != snapshotVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, state.Version, snapshotVersion)
	}
	if len(state.Stack) > StackSize {
		return fmt.Errorf("%w: stack depth %d exceeds %d", ErrBadSnapshot, len(state.Stack), StackSize)
	}
	if state.KeyRegister >= RegisterCount {
		return fmt.Errorf("%w: key register %d", ErrBadSnapshot, state.KeyRegister)
	}
	policy, err := ParseMemoryPolicy(state.Quirks.Memory)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}

	memData, err := readZipEntry(fileMap, "memory.bin")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	if len(memData) != MemorySize {
		return fmt.Errorf("%w: memory.bin is %d bytes", ErrBadSnapshot, len(memData))
	}
	displayData, err := readZipEntry(fileMap, "display.bin")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	if len(displayData) != len(m.Display.Pixels)/8 {
		return fmt.Errorf("%w: display.bin is %d bytes", ErrBadSnapshot, len(displayData))
	}
	rom, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	if len(rom) > MaxRomSize {
		return fmt.Errorf("%w: rom.bin is %d bytes > %d bytes", ErrBadSnapshot, len(rom), MaxRomSize)
	}

	m.rom = rom

	copy(m.Memory[:], memData)
	unpackPixels(&m.Display, displayData)
	m.V = state.V
	m.I = state.I
	m.PC = state.PC & addrMask
	m.DelayTimer = state.DelayTimer
	m.SoundTimer = state.SoundTimer
	m.Keypad = state.Keypad
	m.awaitingKey = state.AwaitingKey
	m.keyRegister = state.KeyRegister
	m.quirks = Quirks{
		ShiftUsesVY:     state.Quirks.ShiftUsesVY,
		FlagAfterResult: state.Quirks.FlagAfterResult,
		Memory:          policy,
	}
	m.Stack.Clear()
	for _, addr := range state.Stack {
		_ = m.Stack.Push(addr)
	}
	return nil
}

// SnapshotToFile writes the snapshot archive to path.
func (m *Machine) SnapshotToFile(path string) error {
	data, err := m.SnapshotToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a snapshot archive from path and applies it.
func (m *Machine) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.RestoreFromBytes(data)
}

// ── helpers ────────────────────────────────────────────────────────────────

// packPixels stores the display one bit per cell, MSB first.
func packPixels(d *Display) []byte {
	out := make([]byte, len(d.Pixels)/8)
	for i, lit := range d.Pixels {
		if lit {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

func unpackPixels(d *Display, data []byte) {
	for i := range d.Pixels {
		d.Pixels[i] = data[i/8]&(0x80>>(i%8)) != 0
	}
	d.dirty = true
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
