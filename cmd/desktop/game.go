package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/audio"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/keypad"
	"gochip8/pkg/savestore"
)

// hostKeys maps layout runes to ebiten keys.
var hostKeys = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'Q': ebiten.KeyQ, 'W': ebiten.KeyW, 'E': ebiten.KeyE, 'R': ebiten.KeyR,
	'A': ebiten.KeyA, 'S': ebiten.KeyS, 'D': ebiten.KeyD, 'F': ebiten.KeyF,
	'Z': ebiten.KeyZ, 'X': ebiten.KeyX, 'C': ebiten.KeyC, 'V': ebiten.KeyV,
}

type command int

const (
	cmdNone command = iota
	cmdQuit
	cmdPause
	cmdReset
	cmdVolumeUp
	cmdVolumeDown
	cmdSave
	cmdLoad
	cmdScreenshot
)

var commandKeys = []struct {
	key ebiten.Key
	cmd command
}{
	{ebiten.KeyEscape, cmdQuit},
	{ebiten.KeySpace, cmdPause},
	{ebiten.KeyEqual, cmdReset},
	{ebiten.KeyK, cmdVolumeUp},
	{ebiten.KeyJ, cmdVolumeDown},
	{ebiten.KeyF5, cmdSave},
	{ebiten.KeyF9, cmdLoad},
	{ebiten.KeyF12, cmdScreenshot},
}

type Game struct {
	ctrl    *chip8.Controller
	cfg     config.Config
	tone    *audio.Tone
	store   *savestore.Store
	romName string
	slot    int
	logger  *slog.Logger

	keys  [chip8.KeyCount]ebiten.Key
	frame *ebiten.Image
	// stale is set when the display changed since the last upload.
	stale  bool
	status string
	until  time.Time
}

func newGame(ctrl *chip8.Controller, cfg config.Config, tone *audio.Tone, store *savestore.Store, romName string, logger *slog.Logger) *Game {
	g := &Game{
		ctrl:    ctrl,
		cfg:     cfg,
		tone:    tone,
		store:   store,
		romName: romName,
		slot:    1,
		logger:  logger,
		stale:   true,
	}
	for i, r := range keypad.Runes() {
		g.keys[i] = hostKeys[r]
	}
	return g
}

func (g *Game) Update() error {
	for _, ck := range commandKeys {
		if inpututil.IsKeyJustPressed(ck.key) {
			g.command(ck.cmd)
		}
	}
	if g.ctrl.State() == chip8.Quit {
		return ebiten.Termination
	}

	m := g.ctrl.Machine()
	for i, k := range g.keys {
		m.SetKey(uint8(i), ebiten.IsKeyPressed(k))
	}

	g.ctrl.RunFrame()
	if m.Display.TakeDirty() {
		g.stale = true
	}
	return nil
}

// command applies a front-end action. It does not touch ebiten input state.
func (g *Game) command(cmd command) {
	m := g.ctrl.Machine()
	switch cmd {
	case cmdQuit:
		g.ctrl.Quit()
	case cmdPause:
		g.ctrl.TogglePause()
	case cmdReset:
		g.ctrl.Reset()
		g.stale = true
	case cmdVolumeUp:
		g.notify("volume %.0f%%", g.tone.VolumeUp()*100)
	case cmdVolumeDown:
		g.notify("volume %.0f%%", g.tone.VolumeDown()*100)
	case cmdSave:
		name := savestore.SlotName(g.romName, g.slot)
		if err := g.store.Save(name, m); err != nil {
			g.logger.Error("save failed", "slot", name, "err", err)
			g.notify("save failed")
			return
		}
		g.logger.Info("saved", "slot", name)
		g.notify("saved slot %d", g.slot)
	case cmdLoad:
		name := savestore.SlotName(g.romName, g.slot)
		if err := g.store.Load(name, m); err != nil {
			g.logger.Error("load failed", "slot", name, "err", err)
			g.notify("load failed")
			return
		}
		g.stale = true
		g.logger.Info("loaded", "slot", name)
		g.notify("loaded slot %d", g.slot)
	case cmdScreenshot:
		path := fmt.Sprintf("%s_%s.png", g.romName, time.Now().Format("20060102_150405"))
		if err := m.Display.SaveScreenshot(path, g.cfg.Foreground, g.cfg.Background, g.cfg.Scale); err != nil {
			g.logger.Error("screenshot failed", "path", path, "err", err)
			return
		}
		g.logger.Info("screenshot", "path", path)
		g.notify("screenshot saved")
	}
}

func (g *Game) notify(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.until = time.Now().Add(2 * time.Second)
}

// overlay is the text drawn over the frame, if any.
func (g *Game) overlay() string {
	if g.ctrl.State() == chip8.Paused {
		return "PAUSED"
	}
	if g.status != "" && time.Now().Before(g.until) {
		return g.status
	}
	return ""
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		w, h := g.Layout(0, 0)
		g.frame = ebiten.NewImage(w, h)
	}
	if g.stale {
		d := &g.ctrl.Machine().Display
		img := d.RenderImage(g.cfg.Foreground, g.cfg.Background, g.cfg.Scale, g.cfg.Border)
		g.frame.WritePixels(img.Pix)
		g.stale = false
	}
	screen.DrawImage(g.frame, nil)

	if msg := g.overlay(); msg != "" {
		text.Draw(screen, msg, basicfont.Face7x13, 8, 18, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF})
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.DisplayWidth * g.cfg.Scale, chip8.DisplayHeight * g.cfg.Scale
}
