package tiled

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrBlockIndexOutOfRange = errors.New("block index out of range")
	ErrIndexOutOfBounds     = errors.New("index out of bounds")
	ErrInvalidSelection     = errors.New("invalid selection")
	ErrInvalidStructure     = errors.New("invalid structure")
	ErrNotfound             = errors.New("not found")
)

// BlockIndexError reports a block coordinate that does not address a chunk of
// a MacroStructure. It matches ErrBlockIndexOutOfRange with errors.Is.
type BlockIndexError struct {
	Block Block
	// Axis is the offending axis, or -1 when the dimensionality is wrong.
	Axis   int
	Reason string
}

func (e *BlockIndexError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("%s: block %v: %s", ErrBlockIndexOutOfRange, []int(e.Block), e.Reason)
	}
	return fmt.Sprintf("%s: block %v axis %d: %s", ErrBlockIndexOutOfRange, []int(e.Block), e.Axis, e.Reason)
}

func (e *BlockIndexError) Unwrap() error { return ErrBlockIndexOutOfRange }
