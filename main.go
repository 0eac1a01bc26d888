//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/asm"
	"gochip8/pkg/audio"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/script"
)

func main() {
	asmPath := flag.String("asm", "", "assemble a source file to a ROM")
	disPath := flag.String("dis", "", "disassemble a ROM file")
	outPath := flag.String("out", "", "output path (default: input with .ch8 or .asm extension)")
	romPath := flag.String("rom", "", "run a ROM headless")
	frames := flag.Int("frames", 60, "frames to run with -rom")
	screenshot := flag.String("screenshot", "", "write the final display to a PNG file")
	snapshot := flag.String("snapshot", "", "write the final machine state to a snapshot file")
	wavPath := flag.String("wav", "", "record the tone during the run to a WAV file")
	scriptPath := flag.String("script", "", "Lua script driving input during the run")
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if *asmPath == "" && *disPath == "" && *romPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -asm <file>, -dis <file> or -rom <file>")
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bad configuration: %v\n", err)
		os.Exit(2)
	}

	if *asmPath != "" {
		output := *outPath
		if output == "" {
			output = defaultOutputPath(*asmPath, ".ch8")
		}
		n, err := assembleFile(*asmPath, output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("assembled %d bytes -> %s\n", n, output)
	}

	if *disPath != "" {
		rom, err := os.ReadFile(*disPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read ROM %q: %v\n", *disPath, err)
			os.Exit(1)
		}
		if *outPath != "" && *asmPath == "" {
			if err := writeFile(*outPath, []byte(asm.Source(rom))); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", *outPath, err)
				os.Exit(1)
			}
			fmt.Printf("disassembled %d bytes -> %s\n", len(rom), *outPath)
		} else {
			fmt.Print(asm.Disassemble(rom))
		}
	}

	if *romPath != "" {
		opts := runOptions{
			frames:     *frames,
			screenshot: *screenshot,
			snapshot:   *snapshot,
			wav:        *wavPath,
			script:     *scriptPath,
		}
		if err := runHeadless(*romPath, cfg, opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", *romPath, err)
			os.Exit(1)
		}
	}
}

func defaultOutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func assembleFile(inPath, outPath string) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return 0, err
	}
	code, _, err := asm.Assemble(string(source))
	if err != nil {
		return 0, err
	}
	if err := writeFile(outPath, code); err != nil {
		return 0, err
	}
	return len(code), nil
}

type runOptions struct {
	frames     int
	screenshot string
	snapshot   string
	wav        string
	script     string
}

// runHeadless runs a ROM for a fixed number of frames with no pacing and
// prints the final register state to w. A script may stop the run early.
func runHeadless(path string, cfg config.Config, opts runOptions, w io.Writer) error {
	logger := config.NewLogger(os.Stderr, cfg.Debug || cfg.Trace, cfg.Quiet)
	tone := audio.NewTone(cfg.SampleRate, cfg.ToneHz, cfg.Volume)
	m, err := chip8.LoadMachineFile(path, chip8.Options{
		Quirks: cfg.Quirks(),
		Random: chip8.NewRandom(cfg.Seed),
		Beeper: tone,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if cfg.Trace {
		m.SetTracer(chip8.NewSlogTracer(logger))
	}

	ctrl := chip8.NewController(m, cfg.InstructionsPerSecond)
	var rec *audio.Recorder
	if opts.wav != "" {
		rec = audio.NewRecorder(tone, chip8.FrameRate)
	}
	var runner *script.Runner
	if opts.script != "" {
		runner = script.New(m)
		defer runner.Close()
		if err := runner.LoadFile(opts.script); err != nil {
			return err
		}
	}
	for i := 0; i < opts.frames; i++ {
		if runner != nil {
			if err := runner.Frame(ctrl.Frames()); err != nil {
				return err
			}
			if runner.Stopped() {
				break
			}
		}
		ctrl.RunFrame()
		if rec != nil {
			rec.Frame()
		}
	}

	if opts.screenshot != "" {
		if err := m.Display.SaveScreenshot(opts.screenshot, cfg.Foreground, cfg.Background, cfg.Scale); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	if opts.snapshot != "" {
		if err := m.SnapshotToFile(opts.snapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if rec != nil {
		if err := rec.WriteWAV(opts.wav); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "run complete (%s): frames=%d PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d lit=%d faults=%d\n",
		filepath.Base(path), ctrl.Frames(), m.PC, m.I, m.Stack.Depth(), m.DelayTimer, m.SoundTimer,
		m.Display.Lit(), m.StackFaults())
	fmt.Fprint(w, "V:")
	for _, v := range m.V {
		fmt.Fprintf(w, " %02X", v)
	}
	fmt.Fprintln(w)
	return nil
}
