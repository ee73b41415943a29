// Command corecade loads a Game Boy/GBC or Master System/Game Gear ROM and
// either runs it headlessly for a fixed number of frames or attaches the
// interactive step debugger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"corecade/debugger"
	"corecade/frontend"
	"corecade/gbcore"
	"corecade/smsggcore"
)

// nullSaveWriter discards persistence; a real frontend would back this with
// a file on disk, keyed by the ROM's path.
type nullSaveWriter struct{}

func (nullSaveWriter) LoadBytes(key string) ([]byte, bool) { return nil, false }
func (nullSaveWriter) PersistBytes(key string, data []byte) error { return nil }

// countingRenderer only tallies frames; this binary has no windowing
// backend of its own (see DESIGN.md).
type countingRenderer struct{ frames int }

func (r *countingRenderer) RenderFrame(pixels []byte, size frontend.FrameSize, aspect frontend.PixelAspectRatio) error {
	r.frames++
	return nil
}

type discardAudio struct{}

func (discardAudio) PushSamples(samples []frontend.Sample) error { return nil }

func main() {
	romPath := flag.String("rom", "", "path to a ROM image")
	frames := flag.Int("frames", 600, "number of frames to run headlessly")
	debug := flag.Bool("debug", false, "attach the interactive step debugger instead of running headlessly")
	system := flag.String("system", "auto", "gb, sms, gg, or auto (guess from file extension)")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: corecade -rom <path> [-frames N] [-debug] [-system gb|sms|gg|auto]")
		os.Exit(2)
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("corecade: %v", err)
	}

	sys := *system
	if sys == "auto" {
		sys = guessSystem(*romPath)
	}

	switch sys {
	case "gb":
		runGB(rom, *frames, *debug)
	case "sms", "gg":
		runSMSGG(rom, sys == "gg", *frames, *debug)
	default:
		log.Fatalf("corecade: could not determine system for %q; pass -system", *romPath)
	}
}

func guessSystem(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gb", ".gbc":
		return "gb"
	case ".sms":
		return "sms"
	case ".gg":
		return "gg"
	default:
		return "auto"
	}
}

func runGB(rom []byte, frames int, debug bool) {
	e, err := gbcore.New(rom, nil, gbcore.Config{}, nullSaveWriter{})
	if err != nil {
		log.Fatalf("corecade: %v", err)
	}

	if debug {
		target := debugger.NewSM83Target(e.CPU(), e.Bus(), e.Bus())
		if err := debugger.Run("sm83", target, 0x0100); err != nil {
			log.Fatalf("corecade: %v", err)
		}
		return
	}

	r := &countingRenderer{}
	for i := 0; i < frames; {
		effect, err := e.Tick(r, discardAudio{}, nullSaveWriter{})
		if err != nil {
			log.Fatalf("corecade: %v", err)
		}
		if effect == frontend.FrameRendered {
			i++
		}
	}
	fmt.Printf("ran %d frames\n", r.frames)
}

func runSMSGG(rom []byte, gameGear bool, frames int, debug bool) {
	e, err := smsggcore.New(rom, nil, smsggcore.Config{GameGear: gameGear}, nullSaveWriter{})
	if err != nil {
		log.Fatalf("corecade: %v", err)
	}

	if debug {
		target := debugger.NewZ80Target(e.CPU(), e.Bus(), e.Bus())
		if err := debugger.Run("z80", target, 0x0000); err != nil {
			log.Fatalf("corecade: %v", err)
		}
		return
	}

	r := &countingRenderer{}
	for i := 0; i < frames; {
		effect, err := e.Tick(r, discardAudio{}, nullSaveWriter{})
		if err != nil {
			log.Fatalf("corecade: %v", err)
		}
		if effect == frontend.FrameRendered {
			i++
		}
	}
	fmt.Printf("ran %d frames\n", r.frames)
}
