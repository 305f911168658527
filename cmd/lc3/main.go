// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/emulator"
	lc3io "github.com/ezrec/lc3/io"
)

func main() {
	var script string
	var input string
	var output string
	var steps int
	var dump bool
	var verbose bool

	flag.StringVar(&script, "s", "", ".star boot script to run before reset")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.IntVar(&steps, "n", -1, "Step limit, 0 for none (default from script)")
	flag.BoolVar(&dump, "r", false, "Dump registers on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(script) != 0 {
		src, err := os.ReadFile(script)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}
		err = emu.Script(script, src)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Object images named on the command line follow any from the script.
	for _, name := range flag.Args() {
		inf, err := os.Open(name)
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
		seg, err := cpu.ReadSegment(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
		emu.Program.Segments = append(emu.Program.Segments, seg)
	}

	if len(emu.Program.Segments) == 0 {
		log.Fatalf("%v: no program images", os.Args[0])
	}

	if steps >= 0 {
		emu.Limit = steps
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	err := run(emu, input)

	if dump {
		fmt.Fprint(os.Stderr, emu.String())
		pc := emu.Pc()
		for n, word := range emu.Memory.Slice(pc, 4) {
			fmt.Fprintf(os.Stderr, "x%04X: %v\n", pc+cpu.Word(n), cpu.Decode(word))
		}
		for depth, link := range emu.Calls.Data {
			fmt.Fprintf(os.Stderr, "#%d: x%04X\n", depth, link)
		}
	}

	if err != nil {
		log.Fatal(err)
	}
}

// run attaches the console input, then resets and runs the emulator.
// A terminal on standard input is held in raw mode until run returns.
func run(emu *emulator.Emulator, input string) (err error) {
	if input == "-" {
		emu.Console.Input = os.Stdin
		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			var state *term.State
			state, err = term.MakeRaw(fd)
			if err != nil {
				return
			}
			defer term.Restore(fd, state)
			emu.Console.Raw = true
		}
	} else {
		var inf *os.File
		inf, err = os.Open(input)
		if err != nil {
			return
		}
		defer inf.Close()
		emu.Console.Input = inf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	defer func() {
		cerr := emu.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = emu.Reset()
	if err != nil {
		return
	}

	_, err = emu.Run(ctx, emu.Limit)
	if errors.Is(err, context.Canceled) || errors.Is(err, lc3io.ErrConsoleInterrupt) {
		err = errors.New("interrupted")
	}

	return
}
