package io

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleInput  = errors.New(f("console input closed"))
	ErrConsoleOutput = errors.New(f("console output missing"))

	// Raw console read a ^C
	ErrConsoleInterrupt = errors.New(f("console interrupt"))
)
