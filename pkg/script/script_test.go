package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"gochip8/pkg/chip8"
)

func newMachine(t *testing.T, rom ...byte) *chip8.Machine {
	t.Helper()
	m, err := chip8.NewMachine(rom, chip8.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestFrameHookPressesKeys(t *testing.T) {
	// LD V0, K; JP 0x202
	m := newMachine(t, 0xF0, 0x0A, 0x12, 0x02)
	r := New(m)
	defer r.Close()

	err := r.Load(`
function on_frame(n)
  if n == 2 then press(0xB) end
  if n == 3 then release(0xB) end
end
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctrl := chip8.NewController(m, 600)
	for n := uint64(0); n < 4; n++ {
		if err := r.Frame(n); err != nil {
			t.Fatalf("Frame(%d): %v", n, err)
		}
		ctrl.RunFrame()
		if n == 1 {
			if waiting, _ := m.AwaitingKey(); !waiting {
				t.Fatal("expected the machine to still wait before the press")
			}
		}
	}
	if m.V[0] != 0xB {
		t.Errorf("expected V0=0xB, got 0x%X", m.V[0])
	}
	if m.Keypad[0xB] {
		t.Error("key B should be released")
	}
}

func TestInspectionFunctions(t *testing.T) {
	// LD V3, 0x2A; LD I, 0x000; DRW V0, V0, 1
	m := newMachine(t, 0x63, 0x2A, 0xA0, 0x00, 0xD0, 0x01)
	for i := 0; i < 3; i++ {
		m.Step()
	}
	r := New(m)
	defer r.Close()

	err := r.Load(`
result = {reg(3), pc(), index(), peek(0x200), lit(), pixel(0, 0), pixel(4, 0)}
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tbl := r.L.GetGlobal("result")
	want := []string{"42", "518", "0", "99", "4", "true", "false"}
	for i, w := range want {
		if got := r.L.GetTable(tbl, lua.LNumber(i+1)).String(); got != w {
			t.Errorf("result[%d]: expected %s, got %s", i+1, w, got)
		}
	}
}

func TestStop(t *testing.T) {
	r := New(newMachine(t))
	defer r.Close()
	if err := r.Load(`function on_frame(n) if n >= 1 then stop() end end`); err != nil {
		t.Fatal(err)
	}
	_ = r.Frame(0)
	if r.Stopped() {
		t.Fatal("stopped too early")
	}
	_ = r.Frame(1)
	if !r.Stopped() {
		t.Error("expected stop after frame 1")
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "function on_frame("},
		{"bad key", "press(16)"},
		{"bad register", "reg(-1)"},
		{"bad address", "peek(4096)"},
		{"sandboxed", "os.exit(1)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(newMachine(t))
			defer r.Close()
			if err := r.Load(tc.src); !errors.Is(err, ErrScript) {
				t.Errorf("expected ErrScript, got %v", err)
			}
		})
	}
}

func TestFrameErrorIsWrapped(t *testing.T) {
	r := New(newMachine(t))
	defer r.Close()
	if err := r.Load(`function on_frame(n) error("boom") end`); err != nil {
		t.Fatal(err)
	}
	if err := r.Frame(7); !errors.Is(err, ErrScript) {
		t.Errorf("expected ErrScript, got %v", err)
	}
}

func TestLoadFileAndNoHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.lua")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(newMachine(t))
	defer r.Close()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := r.Frame(0); err != nil {
		t.Errorf("Frame without a hook: %v", err)
	}
}
