package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRecorderWritesWAV(t *testing.T) {
	tone := NewTone(8000, 1000, 0.5)
	rec := NewRecorder(tone, 60)

	rec.Frame()
	tone.SetTone(true)
	rec.Frame()
	rec.Frame()

	perFrame := 8000 / 60
	if rec.Samples() != 3*perFrame {
		t.Fatalf("expected %d samples, got %d", 3*perFrame, rec.Samples())
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := rec.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("header: rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != 3*perFrame {
		t.Fatalf("expected %d decoded samples, got %d", 3*perFrame, len(buf.Data))
	}

	for i := 0; i < perFrame; i++ {
		if buf.Data[i] != 0 {
			t.Fatalf("sample %d: expected silence before the tone, got %d", i, buf.Data[i])
		}
	}
	// The phase keeps running through silence, so either polarity is fine.
	if v := buf.Data[perFrame]; v != 16383 && v != -16383 {
		t.Errorf("expected a full-volume tone sample, got %d", v)
	}
}
