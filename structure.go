package tiled

import "fmt"

// MacroStructure describes the shape of an array and its partition into
// chunks. Chunks holds, for each axis, the sizes of the chunks along that
// axis in order. The sizes along an axis always sum to the axis length.
type MacroStructure struct {
	Shape  []int   `json:"shape"`
	Chunks [][]int `json:"chunks"`
}

// NewMacroStructure constructs a validated MacroStructure.
func NewMacroStructure(shape []int, chunks [][]int) (*MacroStructure, error) {
	ms := &MacroStructure{Shape: shape, Chunks: chunks}
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	return ms, nil
}

// RegularChunks partitions shape into chunks of chunkShape along each axis.
// The final chunk on an axis is short when the axis length is not a multiple
// of its chunk size.
func RegularChunks(shape, chunkShape []int) (*MacroStructure, error) {
	if len(shape) != len(chunkShape) {
		return nil, fmt.Errorf("%w: shape has %d axes, chunk shape has %d", ErrInvalidStructure, len(shape), len(chunkShape))
	}
	chunks := make([][]int, len(shape))
	for d, n := range shape {
		size := chunkShape[d]
		if size <= 0 {
			return nil, fmt.Errorf("%w: axis %d chunk size %d must be positive", ErrInvalidStructure, d, size)
		}
		axis := []int{}
		for rem := n; rem > 0; rem -= size {
			if rem < size {
				axis = append(axis, rem)
				break
			}
			axis = append(axis, size)
		}
		chunks[d] = axis
	}
	return NewMacroStructure(append([]int(nil), shape...), chunks)
}

// Validate checks that chunk sizes are positive and sum to the length of
// each axis.
func (ms *MacroStructure) Validate() error {
	if len(ms.Chunks) != len(ms.Shape) {
		return fmt.Errorf("%w: shape has %d axes, chunks has %d", ErrInvalidStructure, len(ms.Shape), len(ms.Chunks))
	}
	for d, n := range ms.Shape {
		if n < 0 {
			return fmt.Errorf("%w: axis %d has negative length %d", ErrInvalidStructure, d, n)
		}
		sum := 0
		for _, c := range ms.Chunks[d] {
			if c <= 0 {
				return fmt.Errorf("%w: axis %d has non-positive chunk size %d", ErrInvalidStructure, d, c)
			}
			sum += c
		}
		if sum != n {
			return fmt.Errorf("%w: axis %d chunks sum to %d, want %d", ErrInvalidStructure, d, sum, n)
		}
	}
	return nil
}

// NumBlocks returns the number of chunks along each axis.
func (ms *MacroStructure) NumBlocks() []int {
	n := make([]int, len(ms.Chunks))
	for d, c := range ms.Chunks {
		n[d] = len(c)
	}
	return n
}

// Dimensionality counts the axes that are split into more than one chunk.
func (ms *MacroStructure) Dimensionality() int {
	dims := 0
	for _, c := range ms.Chunks {
		if len(c) > 1 {
			dims++
		}
	}
	return dims
}

// Size is the number of elements in the array.
func (ms *MacroStructure) Size() int {
	return product(ms.Shape)
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
