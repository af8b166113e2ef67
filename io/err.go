package io

import (
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

// ErrRom indicates which program image failed to load.
type ErrRom struct {
	Name string
	Err  error
}

func (err *ErrRom) Error() string {
	return f("rom %v: %v", err.Name, err.Err)
}

func (err *ErrRom) Unwrap() error {
	return err.Err
}
