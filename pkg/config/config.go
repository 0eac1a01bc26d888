package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gochip8/pkg/chip8"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by every front end.
type Config struct {
	Scale      int
	Foreground color.RGBA
	Background color.RGBA
	Border     bool

	InstructionsPerSecond int
	Seed                  int64

	Trace bool
	Debug bool
	Quiet bool

	Volume     float64
	ToneHz     float64
	SampleRate int

	ShiftUsesVY     bool
	FlagAfterResult bool
	MemoryPolicy    string

	SaveDir string
}

func Default() Config {
	return Config{
		Scale:                 20,
		Foreground:            color.RGBA{0x0F, 0xEE, 0xEE, 0xFF},
		Background:            color.RGBA{0x02, 0x00, 0x22, 0xFF},
		Border:                false,
		InstructionsPerSecond: chip8.DefaultInstructionsPerSecond,
		Volume:                0.25,
		ToneHz:                440,
		SampleRate:            44100,
		MemoryPolicy:          chip8.MemoryWrap.String(),
		SaveDir:               "saves",
	}
}

// RegisterFlags binds every field to fs, using the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "window scale factor")
	fs.Var(colorValue{&c.Foreground}, "fg", "foreground colour (#RRGGBB, #RRGGBBAA or 0xRRGGBBAA)")
	fs.Var(colorValue{&c.Background}, "bg", "background colour (#RRGGBB, #RRGGBBAA or 0xRRGGBBAA)")
	fs.BoolVar(&c.Border, "border", c.Border, "draw a gap between pixels")
	fs.IntVar(&c.InstructionsPerSecond, "ips", c.InstructionsPerSecond, "instructions per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed (0 = time based)")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "log every executed instruction")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "only log errors")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "tone volume (0..1)")
	fs.Float64Var(&c.ToneHz, "tone", c.ToneHz, "tone frequency in Hz")
	fs.IntVar(&c.SampleRate, "samplerate", c.SampleRate, "audio sample rate")
	fs.BoolVar(&c.ShiftUsesVY, "shift-vy", c.ShiftUsesVY, "8XY6/8XYE shift VY into VX")
	fs.BoolVar(&c.FlagAfterResult, "vf-last", c.FlagAfterResult, "8XY5/8XY6/8XY7/8XYE write VF after VX")
	fs.StringVar(&c.MemoryPolicy, "memory", c.MemoryPolicy, "out of range memory access: wrap or clip")
	fs.StringVar(&c.SaveDir, "savedir", c.SaveDir, "directory for save slots")
}

func (c Config) Validate() error {
	if c.Scale < 1 {
		return fmt.Errorf("%w: scale must be at least 1, got %d", ErrInvalidConfig, c.Scale)
	}
	if c.InstructionsPerSecond < 1 {
		return fmt.Errorf("%w: ips must be positive, got %d", ErrInvalidConfig, c.InstructionsPerSecond)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be within 0..1, got %g", ErrInvalidConfig, c.Volume)
	}
	if c.ToneHz <= 0 {
		return fmt.Errorf("%w: tone must be positive, got %g", ErrInvalidConfig, c.ToneHz)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if _, err := chip8.ParseMemoryPolicy(c.MemoryPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Quirks converts the compatibility flags. Validate first.
func (c Config) Quirks() chip8.Quirks {
	policy, _ := chip8.ParseMemoryPolicy(c.MemoryPolicy)
	return chip8.Quirks{
		ShiftUsesVY:     c.ShiftUsesVY,
		FlagAfterResult: c.FlagAfterResult,
		Memory:          policy,
	}
}

// NewLogger builds a text logger whose level follows the debug and quiet
// flags. Trace output needs debug.
func NewLogger(w io.Writer, debug, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseColor accepts #RRGGBB, #RRGGBBAA or 0xRRGGBBAA.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	var hex string
	switch {
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
		if len(hex) == 6 {
			hex += "FF"
		}
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		hex = s[2:]
	default:
		return color.RGBA{}, fmt.Errorf("%w: colour %q needs a # or 0x prefix", ErrInvalidConfig, s)
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: colour %q has %d hex digits", ErrInvalidConfig, s, len(hex))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: colour %q: %w", ErrInvalidConfig, s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("0x%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

type colorValue struct {
	c *color.RGBA
}

func (v colorValue) String() string {
	if v.c == nil {
		return ""
	}
	return FormatColor(*v.c)
}

func (v colorValue) Set(s string) error {
	c, err := ParseColor(s)
	if err != nil {
		return err
	}
	*v.c = c
	return nil
}
