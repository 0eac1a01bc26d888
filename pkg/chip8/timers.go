package chip8

// TickTimers advances the delay and sound timers by one 60 Hz period and
// tells the beeper whether the tone is audible.
func (m *Machine) TickTimers() {
	if m.DelayTimer > 0 {
		m.DelayTimer--
	}

	tone := m.SoundTimer > 0
	if tone {
		m.SoundTimer--
	}
	if m.beeper != nil {
		m.beeper.SetTone(tone)
	}
}
