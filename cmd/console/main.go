package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/utils"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

type console struct {
	out   io.Writer
	input <-chan byte
	keys  heldKeys
	bell  *bell
	state chip8.RunState
}

// poll drains pending input and applies it before the slice runs.
func (c *console) poll(ctrl *chip8.Controller) {
	for {
		select {
		case b, ok := <-c.input:
			if !ok {
				ctrl.Quit()
				return
			}
			c.handle(ctrl, b)
			continue
		default:
		}
		break
	}
	c.keys.apply(ctrl.Machine())

	if s := ctrl.State(); s != c.state {
		c.state = s
		c.status(s)
	}
	if c.bell.take() {
		fmt.Fprint(c.out, "\a")
	}
}

func (c *console) handle(ctrl *chip8.Controller, b byte) {
	switch b {
	case keyCtrlC, keyEsc:
		ctrl.Quit()
	case ' ':
		ctrl.TogglePause()
	case '=':
		ctrl.Reset()
	default:
		c.keys.press(rune(b))
	}
}

func (c *console) present(d *chip8.Display) {
	fmt.Fprint(c.out, ansiHome+render(d))
}

func (c *console) status(s chip8.RunState) {
	line := strings.ToUpper(s.String())
	fmt.Fprintf(c.out, "\x1b[%d;1H%s  [space] pause  [=] reset  [esc] quit%s", chip8.DisplayHeight/2+1, line, ansiClearLine)
}

// readInput forwards stdin bytes until EOF.
func readInput(r io.Reader) <-chan byte {
	ch := make(chan byte, 64)
	go func() {
		defer close(ch)
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			ch <- b
		}
	}()
	return ch
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Bad configuration: %v", err)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to resolve ROM path: %v", err)
	}

	// The terminal is the screen, so logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if cfg.Debug || cfg.Trace {
		f, err := os.Create(utils.RomName(fullPath) + ".log")
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger = config.NewLogger(f, true, false)
	}

	beeper := &bell{}
	m, err := chip8.LoadMachineFile(fullPath, chip8.Options{
		Quirks: cfg.Quirks(),
		Random: chip8.NewRandom(cfg.Seed),
		Beeper: beeper,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	if cfg.Trace {
		m.SetTracer(chip8.NewSlogTracer(logger))
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			log.Fatalf("Failed to set raw mode: %v", err)
		}
		defer term.Restore(fd, oldState)
	}

	out := bufio.NewWriter(os.Stdout)
	c := &console{
		out:   out,
		input: readInput(os.Stdin),
		bell:  beeper,
		state: chip8.Running,
	}
	fmt.Fprint(out, ansiClear+ansiHideCurs)
	c.status(chip8.Running)

	ctrl := chip8.NewController(m, cfg.InstructionsPerSecond)
	runErr := ctrl.Run(context.Background(), chip8.Hooks{
		Poll: func(ctrl *chip8.Controller) {
			c.poll(ctrl)
			out.Flush()
		},
		Present: func(d *chip8.Display) {
			c.present(d)
			out.Flush()
		},
	})

	fmt.Fprint(out, ansiShowCurs+"\r\n")
	out.Flush()
	if runErr != nil {
		logger.Error("run stopped", "err", runErr)
	}
}
