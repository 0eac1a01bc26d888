package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	BytesPerSample = 4
	volumeStep     = 0.05
)

// Tone is a mono square-wave generator producing float32 little-endian
// samples. It implements chip8.Beeper: the gate follows SetTone.
type Tone struct {
	mu         sync.Mutex
	sampleRate int
	freq       float64
	volume     float64
	on         bool
	phase      float64
}

func NewTone(sampleRate int, freq, volume float64) *Tone {
	t := &Tone{sampleRate: sampleRate, freq: freq}
	t.SetVolume(volume)
	return t
}

func (t *Tone) SetTone(on bool) {
	t.mu.Lock()
	t.on = on
	t.mu.Unlock()
}

func (t *Tone) On() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.on
}

// SetVolume clamps v to 0..1.
func (t *Tone) SetVolume(v float64) {
	t.mu.Lock()
	t.volume = math.Max(0, math.Min(1, v))
	t.mu.Unlock()
}

func (t *Tone) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

func (t *Tone) VolumeUp() float64 {
	t.SetVolume(t.Volume() + volumeStep)
	return t.Volume()
}

func (t *Tone) VolumeDown() float64 {
	t.SetVolume(t.Volume() - volumeStep)
	return t.Volume()
}

// Read fills p with whole samples. It never returns an error; silence is
// written while the gate is closed.
func (t *Tone) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p) / BytesPerSample * BytesPerSample
	step := t.freq / float64(t.sampleRate)
	for i := 0; i < n; i += BytesPerSample {
		var s float32
		if t.on {
			s = float32(t.volume)
			if t.phase >= 0.5 {
				s = -s
			}
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(s))

		t.phase += step
		if t.phase >= 1 {
			t.phase -= 1
		}
	}
	return n, nil
}
