package config

import (
	"bytes"
	"errors"
	"flag"
	"image/color"
	"io"
	"strings"
	"testing"

	"gochip8/pkg/chip8"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.Scale != 20 || cfg.Border {
		t.Errorf("unexpected defaults: scale=%d border=%v", cfg.Scale, cfg.Border)
	}
	if cfg.Foreground != (color.RGBA{0x0F, 0xEE, 0xEE, 0xFF}) {
		t.Errorf("foreground: got %s", FormatColor(cfg.Foreground))
	}
	if cfg.Quirks() != (chip8.Quirks{}) {
		t.Errorf("default quirks: got %+v", cfg.Quirks())
	}
}

func TestRegisterFlags(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.RegisterFlags(fs)

	err := fs.Parse([]string{
		"-scale", "10",
		"-fg", "#FF0000",
		"-bg", "0x00000080",
		"-ips", "1000",
		"-seed", "42",
		"-shift-vy",
		"-vf-last",
		"-memory", "clip",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Scale != 10 || cfg.InstructionsPerSecond != 1000 || cfg.Seed != 42 {
		t.Errorf("parsed: scale=%d ips=%d seed=%d", cfg.Scale, cfg.InstructionsPerSecond, cfg.Seed)
	}
	if cfg.Foreground != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("fg: got %s", FormatColor(cfg.Foreground))
	}
	if cfg.Background != (color.RGBA{0, 0, 0, 0x80}) {
		t.Errorf("bg: got %s", FormatColor(cfg.Background))
	}
	want := chip8.Quirks{ShiftUsesVY: true, FlagAfterResult: true, Memory: chip8.MemoryClip}
	if cfg.Quirks() != want {
		t.Errorf("quirks: expected %+v, got %+v", want, cfg.Quirks())
	}

	if err := fs.Parse([]string{"-fg", "red"}); err == nil {
		t.Error("expected error for colour without prefix")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"scale", func(c *Config) { c.Scale = 0 }},
		{"ips", func(c *Config) { c.InstructionsPerSecond = -1 }},
		{"volume", func(c *Config) { c.Volume = 1.5 }},
		{"tone", func(c *Config) { c.ToneHz = 0 }},
		{"sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"memory", func(c *Config) { c.MemoryPolicy = "explode" }},
	}
	for _, tc := range tests {
		cfg := Default()
		tc.modify(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#0FEEEE", color.RGBA{0x0F, 0xEE, 0xEE, 0xFF}, false},
		{"#02002280", color.RGBA{0x02, 0x00, 0x22, 0x80}, false},
		{"0x0FEEEEFF", color.RGBA{0x0F, 0xEE, 0xEE, 0xFF}, false},
		{"0X01020304", color.RGBA{1, 2, 3, 4}, false},
		{"#FFF", color.RGBA{}, true},
		{"0xGG000000", color.RGBA{}, true},
		{"FFFFFF", color.RGBA{}, true},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
	if s := FormatColor(color.RGBA{0x0F, 0xEE, 0xEE, 0xFF}); s != "0x0FEEEEFF" {
		t.Errorf("FormatColor: got %s", s)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		debug, quiet bool
		wantDebug    bool
		wantInfo     bool
	}{
		{false, false, false, true},
		{true, false, true, true},
		{false, true, false, false},
		{true, true, true, true},
	}
	for _, tc := range tests {
		buf := new(bytes.Buffer)
		logger := NewLogger(buf, tc.debug, tc.quiet)
		logger.Debug("dbg")
		logger.Info("inf")
		out := buf.String()
		if strings.Contains(out, "dbg") != tc.wantDebug {
			t.Errorf("debug=%v quiet=%v: debug output %v", tc.debug, tc.quiet, !tc.wantDebug)
		}
		if strings.Contains(out, "inf") != tc.wantInfo {
			t.Errorf("debug=%v quiet=%v: info output %v", tc.debug, tc.quiet, !tc.wantInfo)
		}
	}
}
