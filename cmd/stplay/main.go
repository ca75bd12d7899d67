// main.go - stplay: inspect, render and play Atari ST sound files

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/intuitionamiga/stsound"
	"golang.org/x/term"
)

const (
	defaultRate    = 44100
	defaultSeconds = 180
)

type options struct {
	info    bool
	wavPath string
	outDir  string
	play    bool
	script  string
	rate    int
	seconds float64
	subsong int
	color   bool

	// newCore runs SNDH replay code. Builds without a 68000 core leave it nil.
	newCore stsound.CoreFactory
}

func main() {
	color := term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(os.Args[1:], os.Stdout, color); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, color bool) error {
	opts := options{color: color}

	flagSet := flag.NewFlagSet("stplay", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&opts.info, "info", false, "Print file metadata")
	flagSet.StringVar(&opts.wavPath, "wav", "", "Render to a 16-bit mono WAV file")
	flagSet.StringVar(&opts.outDir, "outdir", "", "Render every file into this directory")
	flagSet.BoolVar(&opts.play, "play", false, "Play through the default audio device")
	flagSet.StringVar(&opts.script, "script", "", "Run a Lua register script against a bare machine")
	flagSet.IntVar(&opts.rate, "rate", defaultRate, "Output sample rate in Hz")
	flagSet.Float64Var(&opts.seconds, "seconds", 0, "Length to render, 0 uses the file's own duration")
	flagSet.IntVar(&opts.subsong, "subsong", 0, "SNDH subsong, 0 selects the default")

	flagSet.Usage = func() {
		flagSet.SetOutput(stdout)
		fmt.Fprintln(stdout, "Usage: stplay [-info] [-wav out.wav | -outdir dir] [-play] [-script bench.lua] [-rate 44100] [-seconds n] [-subsong n] files...")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if opts.rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", opts.rate)
	}
	files := flagSet.Args()

	switch {
	case opts.script != "":
		return runScript(opts, stdout)
	case opts.info:
		if len(files) == 0 {
			return errors.New("-info needs at least one file")
		}
		return printInfo(files, opts, stdout)
	case opts.outDir != "":
		return convertAll(files, opts, stdout)
	case opts.wavPath != "":
		if len(files) != 1 {
			return errors.New("-wav takes exactly one file, use -outdir for several")
		}
		return convertFile(files[0], opts.wavPath, opts)
	case opts.play:
		if len(files) == 0 {
			return errors.New("-play needs a file")
		}
		for _, path := range files {
			if err := playFile(path, opts, stdout); err != nil {
				return err
			}
		}
		return nil
	}

	flagSet.Usage()
	return errors.New("nothing to do")
}
