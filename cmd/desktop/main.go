package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/audio"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/savestore"
	"gochip8/pkg/utils"
)

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

	logger := config.NewLogger(os.Stderr, cfg.Debug || cfg.Trace, cfg.Quiet)

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to resolve ROM path: %v", err)
	}
	romName := utils.RomName(fullPath)

	tone := audio.NewTone(cfg.SampleRate, cfg.ToneHz, cfg.Volume)
	m, err := chip8.LoadMachineFile(fullPath, chip8.Options{
		Quirks: cfg.Quirks(),
		Random: chip8.NewRandom(cfg.Seed),
		Beeper: tone,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	if cfg.Trace {
		m.SetTracer(chip8.NewSlogTracer(logger))
	}

	player, err := audio.NewPlayer(tone)
	if err != nil {
		logger.Warn("audio disabled", "err", err)
	} else {
		player.Start()
		defer player.Close()
	}

	store := savestore.New()
	if err := store.LoadFrom(cfg.SaveDir); err != nil {
		logger.Warn("could not load save slots", "dir", cfg.SaveDir, "err", err)
	}
	stopSyncer := make(chan struct{})
	synced := make(chan struct{})
	go func() {
		store.RunSyncer(cfg.SaveDir, 3*time.Second, stopSyncer, logger)
		close(synced)
	}()

	ctrl := chip8.NewController(m, cfg.InstructionsPerSecond)
	game := newGame(ctrl, cfg, tone, store, romName, logger)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(chip8.DisplayWidth*cfg.Scale, chip8.DisplayHeight*cfg.Scale)
	ebiten.SetWindowTitle("CHIP-8 - " + romName)
	ebiten.SetTPS(chip8.FrameRate)

	runErr := ebiten.RunGame(game)

	close(stopSyncer)
	<-synced
	if runErr != nil {
		log.Fatal(runErr)
	}
}
