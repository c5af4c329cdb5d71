package main

import (
	"github.com/wippyai/wasm-decoder/errors"
)

// input holds module bytes and releases them on Close. Decoded modules borrow
// from data, so Close must wait until they are no longer used.
type input struct {
	release func() error
	data    []byte
	path    string
}

func (in *input) Close() error {
	if in.release == nil {
		return nil
	}
	err := in.release()
	in.release = nil
	in.data = nil
	return err
}

func load(path string) (*input, error) {
	data, release, err := readFile(path)
	if err != nil {
		return nil, errors.Load(path, err)
	}
	return &input{data: data, release: release, path: path}, nil
}
