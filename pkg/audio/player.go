package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player streams a Tone through the host audio device.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	tone    *Tone
	started bool
	mutex   sync.Mutex
}

// NewPlayer opens the audio device. It blocks until the device is ready.
func NewPlayer(tone *Tone) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   tone.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(tone),
		tone:   tone,
	}, nil
}

func (p *Player) Tone() *Tone {
	return p.tone
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.started = false
	return err
}
