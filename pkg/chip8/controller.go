package chip8

import (
	"context"
	"time"
)

const (
	FrameRate                    = 60
	FrameDuration                = time.Second / FrameRate
	DefaultInstructionsPerSecond = 700
)

// Controller owns a Machine and advances it one 60 Hz slice at a time.
type Controller struct {
	machine  *Machine
	state    RunState
	perFrame int
	frames   uint64
}

func NewController(m *Machine, instructionsPerSecond int) *Controller {
	c := &Controller{machine: m, state: Running}
	c.SetInstructionsPerSecond(instructionsPerSecond)
	return c
}

func (c *Controller) Machine() *Machine {
	return c.machine
}

func (c *Controller) State() RunState {
	return c.state
}

// SetInstructionsPerSecond sets the per-slice budget to ips/60, at least 1.
// A non-positive ips selects the default rate.
func (c *Controller) SetInstructionsPerSecond(ips int) {
	if ips <= 0 {
		ips = DefaultInstructionsPerSecond
	}
	c.perFrame = ips / FrameRate
	if c.perFrame < 1 {
		c.perFrame = 1
	}
}

func (c *Controller) InstructionsPerFrame() int {
	return c.perFrame
}

// Frames counts the slices that actually ran.
func (c *Controller) Frames() uint64 {
	return c.frames
}

// RunFrame executes one slice: the instruction budget in program order, then
// exactly one timer tick. It does nothing unless the state is Running and
// reports whether the slice ran.
func (c *Controller) RunFrame() bool {
	if c.state != Running {
		return false
	}
	for i := 0; i < c.perFrame; i++ {
		c.machine.Step()
	}
	c.machine.TickTimers()
	c.frames++
	return true
}

// TogglePause switches between Running and Paused. Quit is terminal.
func (c *Controller) TogglePause() {
	switch c.state {
	case Running:
		c.state = Paused
		if c.machine.beeper != nil {
			c.machine.beeper.SetTone(false)
		}
	case Paused:
		c.state = Running
	}
}

func (c *Controller) Quit() {
	c.state = Quit
	if c.machine.beeper != nil {
		c.machine.beeper.SetTone(false)
	}
}

// Reset reloads the ROM into a fresh machine state and resumes running.
func (c *Controller) Reset() {
	if c.state == Quit {
		return
	}
	c.machine.Reset()
	c.state = Running
}

// Hooks are the per-slice callbacks used by Run.
type Hooks struct {
	// Poll runs first in every slice, including paused ones, so input and
	// quit/pause/reset signals are still seen.
	Poll func(c *Controller)
	// Present is called after a slice that left the display dirty.
	Present func(d *Display)
}

// Run paces the controller at FrameRate until Quit or ctx is cancelled.
func (c *Controller) Run(ctx context.Context, hooks Hooks) error {
	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for c.state != Quit {
		if hooks.Poll != nil {
			hooks.Poll(c)
		}
		if c.RunFrame() && hooks.Present != nil && c.machine.Display.TakeDirty() {
			hooks.Present(&c.machine.Display)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
