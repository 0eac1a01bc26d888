package chip8

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	MemorySize   = 4096
	ProgramStart = 0x200
	MaxRomSize   = MemorySize - ProgramStart

	RegisterCount = 16
	KeyCount      = 16

	// addrMask keeps the program counter inside the 12-bit address space.
	addrMask = MemorySize - 1
)

var (
	ErrRomTooLarge   = errors.New("rom too large")
	ErrRomUnreadable = errors.New("rom unreadable")
)

// RunState is the controller state gating instruction execution.
type RunState uint8

const (
	Running RunState = iota
	Paused
	Quit
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Quit:
		return "quit"
	}
	return fmt.Sprintf("RunState(%d)", uint8(s))
}

// Beeper is the audio collaborator. It only ever learns whether the tone
// should currently be audible.
type Beeper interface {
	SetTone(on bool)
}

// Tracer observes every decoded instruction before its effect is applied.
type Tracer interface {
	Trace(rec TraceRecord)
}

// Options configures a Machine. The zero value is usable.
type Options struct {
	Quirks Quirks
	Random RandomSource
	Beeper Beeper
	Tracer Tracer
	Logger *slog.Logger
}

// Machine is the complete CHIP-8 state: memory, registers, stack, timers,
// keypad and display.
type Machine struct {
	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16

	DelayTimer byte
	SoundTimer byte

	Keypad [KeyCount]bool

	Stack   Stack
	Display Display

	// awaitingKey is set by FX0A when no key was down; keyRegister is the
	// destination register.
	awaitingKey bool
	keyRegister uint8

	rom         []byte
	quirks      Quirks
	random      RandomSource
	beeper      Beeper
	tracer      Tracer
	logger      *slog.Logger
	stackFaults int
}

// NewMachine creates a machine with the font loaded and rom copied to 0x200.
func NewMachine(rom []byte, opts Options) (*Machine, error) {
	if len(rom) > MaxRomSize {
		return nil, fmt.Errorf("%w: %d bytes > %d bytes", ErrRomTooLarge, len(rom), MaxRomSize)
	}

	m := &Machine{
		rom:    append([]byte(nil), rom...),
		quirks: opts.Quirks,
		random: opts.Random,
		beeper: opts.Beeper,
		tracer: opts.Tracer,
		logger: opts.Logger,
	}
	if m.random == nil {
		m.random = NewRandom(0)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	m.Reset()
	return m, nil
}

// LoadMachine reads a ROM image from r.
func LoadMachine(r io.Reader, opts Options) (*Machine, error) {
	rom, err := io.ReadAll(io.LimitReader(r, MaxRomSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRomUnreadable, err)
	}
	return NewMachine(rom, opts)
}

// LoadMachineFile opens path and loads it as a ROM.
func LoadMachineFile(path string, opts Options) (*Machine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRomUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRomUnreadable, err)
	}
	if info.Size() > MaxRomSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, max %d", ErrRomTooLarge, path, info.Size(), MaxRomSize)
	}
	return LoadMachine(f, opts)
}

// Reset zeroes all state, reloads font and ROM and puts PC at the entry point.
func (m *Machine) Reset() {
	m.Memory = [MemorySize]byte{}
	copy(m.Memory[FontAddress:], font[:])
	copy(m.Memory[ProgramStart:], m.rom)

	m.V = [RegisterCount]byte{}
	m.I = 0
	m.PC = ProgramStart
	m.DelayTimer = 0
	m.SoundTimer = 0
	m.Keypad = [KeyCount]bool{}
	m.Stack.Clear()
	m.Display.Clear()
	m.awaitingKey = false
	m.keyRegister = 0
	m.stackFaults = 0
	if m.beeper != nil {
		m.beeper.SetTone(false)
	}
}

// ROM returns a copy of the loaded program bytes.
func (m *Machine) ROM() []byte {
	return append([]byte(nil), m.rom...)
}

// Quirks returns the compatibility settings the machine runs with.
func (m *Machine) Quirks() Quirks {
	return m.quirks
}

// SetTracer installs or removes (nil) the instruction observer.
func (m *Machine) SetTracer(t Tracer) {
	m.tracer = t
}

// SetKey records a keypad press or release. Keys outside 0x0-0xF are ignored.
func (m *Machine) SetKey(key uint8, down bool) {
	if key < KeyCount {
		m.Keypad[key] = down
	}
}

// AwaitingKey reports whether FX0A is blocking, and which register it fills.
func (m *Machine) AwaitingKey() (bool, uint8) {
	return m.awaitingKey, m.keyRegister
}

// StackFaults counts calls and returns that were dropped because the stack
// was full or empty.
func (m *Machine) StackFaults() int {
	return m.stackFaults
}

// ToneOn reports whether the sound timer is currently running.
func (m *Machine) ToneOn() bool {
	return m.SoundTimer > 0
}

// Fetch reads the big-endian opcode at PC without advancing it. Instruction
// fetches always wrap at 4 KiB; the memory policy only covers I.
func (m *Machine) Fetch() uint16 {
	hi := uint16(m.Memory[m.PC&addrMask])
	lo := uint16(m.Memory[(m.PC+1)&addrMask])
	return hi<<8 | lo
}

// readByte and writeByte apply the memory quirk to addresses at or past 4 KiB.
func (m *Machine) readByte(addr uint16) byte {
	if int(addr) >= MemorySize {
		if m.quirks.Memory == MemoryClip {
			return 0
		}
		addr &= MemorySize - 1
	}
	return m.Memory[addr]
}

func (m *Machine) writeByte(addr uint16, val byte) {
	if int(addr) >= MemorySize {
		if m.quirks.Memory == MemoryClip {
			return
		}
		addr &= MemorySize - 1
	}
	m.Memory[addr] = val
}
