package emulator

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lc3/cpu"
)

// Script runs a boot script that configures the emulator before Reset.
//
// The script sees every define as a predeclared integer, plus:
//
//	image(path)           - add an object image; returns its origin
//	poke(addr, *values)   - add a segment of words; strings expand to
//	                        one word per byte plus a terminating zero
//	reg(name, value)      - preset a register after reset
//	entry(addr)           - override the program entry point
//	limit(steps)          - set the step budget, zero for none
//
// Relative image paths are resolved against the directory of name.
func (emu *Emulator) Script(name string, src any) (err error) {
	defer func() {
		if err != nil {
			err = &ErrScript{Name: name, Err: err}
		}
	}()

	predeclared := starlark.StringDict{}
	for key, text := range emu.Defines() {
		value, perr := strconv.ParseInt(text, 0, 64)
		if perr != nil {
			continue
		}
		predeclared[key] = starlark.MakeInt64(value)
	}

	for _, builtin := range []*starlark.Builtin{
		starlark.NewBuiltin("image", emu.builtinImage),
		starlark.NewBuiltin("poke", emu.builtinPoke),
		starlark.NewBuiltin("reg", emu.builtinReg),
		starlark.NewBuiltin("entry", emu.builtinEntry),
		starlark.NewBuiltin("limit", emu.builtinLimit),
	} {
		predeclared[builtin.Name()] = builtin
	}

	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("%v: %v", name, msg)
		},
	}

	_, err = starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, predeclared)

	return
}

// asWord converts a starlark integer to a word. Negative values down to
// -32768 are accepted as their two's complement.
func asWord(value starlark.Value) (word cpu.Word, err error) {
	n, err := starlark.AsInt32(value)
	if err != nil {
		return
	}

	if n < -0x8000 || n > 0xffff {
		err = fmt.Errorf("%v out of range for a word", value)
		return
	}

	word = cpu.Word(n)
	return
}

func (emu *Emulator) builtinImage(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &path)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(thread.Name), path)
	}

	inf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inf.Close()

	seg, err := cpu.ReadSegment(inf)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	emu.Program.Segments = append(emu.Program.Segments, seg)

	if emu.Verbose {
		log.Printf("emulator: image %v, %d words at x%04X", path, len(seg.Words), seg.Origin)
	}

	return starlark.MakeInt(int(seg.Origin)), nil
}

func (emu *Emulator) builtinPoke(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) != 0 {
		return nil, fmt.Errorf("%v: unexpected keyword arguments", b.Name())
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("%v: missing address", b.Name())
	}

	addr, err := asWord(args[0])
	if err != nil {
		return nil, fmt.Errorf("%v: %w", b.Name(), err)
	}

	var words []cpu.Word
	for _, arg := range args[1:] {
		if text, ok := arg.(starlark.String); ok {
			for _, ch := range []byte(string(text)) {
				words = append(words, cpu.Word(ch))
			}
			words = append(words, 0)
			continue
		}

		word, err := asWord(arg)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", b.Name(), err)
		}
		words = append(words, word)
	}

	emu.Program.Add(addr, words...)

	return starlark.None, nil
}

func (emu *Emulator) builtinReg(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var value starlark.Value
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &value)
	if err != nil {
		return nil, err
	}

	reg, ok := lookupReg(name)
	if !ok {
		return nil, fmt.Errorf("%v: %w %q", b.Name(), ErrRegister, name)
	}

	word, err := asWord(value)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", b.Name(), err)
	}

	emu.Preset[reg] = word

	return starlark.None, nil
}

func (emu *Emulator) builtinEntry(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value starlark.Value
	err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &value)
	if err != nil {
		return nil, err
	}

	word, err := asWord(value)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", b.Name(), err)
	}

	emu.Entry = &word

	return starlark.None, nil
}

func (emu *Emulator) builtinLimit(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var steps int
	err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &steps)
	if err != nil {
		return nil, err
	}

	if steps < 0 {
		return nil, fmt.Errorf("%v: negative step limit", b.Name())
	}

	emu.Limit = steps

	return starlark.None, nil
}

// lookupReg finds a register by its case-insensitive name.
func lookupReg(name string) (reg cpu.Reg, ok bool) {
	for reg = cpu.R0; reg < cpu.REGISTER_COUNT; reg++ {
		if strings.EqualFold(reg.String(), name) {
			ok = true
			return
		}
	}

	return
}
