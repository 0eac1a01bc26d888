package chip8

import (
	"math/rand"
	"time"
)

// RandomSource supplies the bytes consumed by CXNN.
type RandomSource interface {
	Byte() byte
}

// Random is a seeded RandomSource. The same seed always yields the same
// sequence, which is what tests rely on.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a source seeded with seed. A zero seed is replaced with
// the current time.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Byte() byte {
	return byte(r.rng.Intn(256))
}
