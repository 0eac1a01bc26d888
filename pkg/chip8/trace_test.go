package chip8

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSlogTracer(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := newTestMachine(t, 0x6A05)
	m.SetTracer(NewSlogTracer(logger))
	m.Step()

	var entry struct {
		Msg    string `json:"msg"`
		Addr   string `json:"addr"`
		Opcode string `json:"opcode"`
		Desc   string `json:"desc"`
		Fields struct {
			X uint8 `json:"x"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry.Msg != "exec" || entry.Addr != "0x200" || entry.Opcode != "0x6A05" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields.X != 0xA {
		t.Errorf("fields.x: expected 10, got %d", entry.Fields.X)
	}
	if entry.Desc != "Set VA = 0x05" {
		t.Errorf("desc: %q", entry.Desc)
	}
}

func TestSlogTracerRespectsLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	m := newTestMachine(t, 0x6A05)
	m.SetTracer(NewSlogTracer(logger))
	m.Step()
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}

func TestStackFaultIsLogged(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, nil))
	m, err := NewMachine(words(0x00EE), Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	m.Step()
	if !bytes.Contains(buf.Bytes(), []byte("stack underflow")) {
		t.Errorf("expected warning about underflow, got %q", buf.String())
	}
}
