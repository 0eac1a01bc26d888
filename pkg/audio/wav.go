package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// Recorder pulls samples from a Tone one frame at a time and keeps them in
// memory until WriteWAV. Meant for headless runs, where nothing else drains
// the tone.
type Recorder struct {
	tone      *Tone
	perFrame  int
	frameRate int
	buf       []byte
	samples   []int
}

func NewRecorder(tone *Tone, frameRate int) *Recorder {
	perFrame := tone.sampleRate / frameRate
	return &Recorder{
		tone:      tone,
		perFrame:  perFrame,
		frameRate: frameRate,
		buf:       make([]byte, perFrame*BytesPerSample),
	}
}

// Frame captures one frame's worth of samples at the current gate.
func (r *Recorder) Frame() {
	n, _ := r.tone.Read(r.buf)
	for i := 0; i < n; i += BytesPerSample {
		s := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[i:]))
		r.samples = append(r.samples, int(s*math.MaxInt16))
	}
}

func (r *Recorder) Samples() int {
	return len(r.samples)
}

// WriteWAV encodes everything captured so far as 16-bit mono PCM.
func (r *Recorder) WriteWAV(path string) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wav: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, r.tone.sampleRate, wavBitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: r.tone.sampleRate},
		Data:           r.samples,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
