// Package object loads assembled Y86-64 programs into a flat byte
// image ready to be copied into a Machine's backing memory. Y86-64
// object code carries no sections or relocations — the assembler
// (out of scope here) already resolves every address — so this
// package only has to read a raw byte stream.
package object

import (
	"fmt"
	"io"

	"github.com/sarchlab/y86sim/units"
)

// Image is a fully-resolved Y86-64 program image: the byte contents
// to place at address 0 and the PC to start fetching from.
type Image struct {
	StartPC uint64
	Bytes   []byte
}

// Load reads every byte from r into an Image starting execution at
// startPC. r is exhausted entirely; there is no length prefix or
// header to parse.
func Load(r io.Reader, startPC uint64) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("object: read failed: %w", err)
	}
	return &Image{StartPC: startPC, Bytes: data}, nil
}

// LoadInto copies img into mem starting at address 0, the fixed
// origin every Y86-64 object image loads at.
func (img *Image) LoadInto(mem *units.Memory) error {
	if err := mem.LoadImage(img.Bytes); err != nil {
		return fmt.Errorf("object: %w", err)
	}
	return nil
}
