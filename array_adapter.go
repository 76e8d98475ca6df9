package tiled

import (
	"context"
	"fmt"
)

// ArrayAdapter serves an array that is already in memory, chunked however
// the caller likes.
type ArrayAdapter struct {
	arr   *Array
	ms    *MacroStructure
	attrs Attributes
}

var _ Adapter = (*ArrayAdapter)(nil)

// NewArrayAdapter serves arr with the given per-axis chunk sizes. Nil
// chunks put the whole array in a single block.
func NewArrayAdapter(arr *Array, chunks [][]int, attrs Attributes) (*ArrayAdapter, error) {
	if chunks == nil {
		chunks = make([][]int, arr.NDim())
		for d, n := range arr.Shape {
			chunks[d] = wholeAxis(n)
		}
	}
	ms, err := NewMacroStructure(append([]int(nil), arr.Shape...), chunks)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	return &ArrayAdapter{arr: arr, ms: ms, attrs: attrs}, nil
}

// NewRegularArrayAdapter serves arr split into chunks of chunkShape.
func NewRegularArrayAdapter(arr *Array, chunkShape []int, attrs Attributes) (*ArrayAdapter, error) {
	ms, err := RegularChunks(arr.Shape, chunkShape)
	if err != nil {
		return nil, err
	}
	return NewArrayAdapter(arr, ms.Chunks, attrs)
}

func (a *ArrayAdapter) Metadata() Attributes { return a.attrs.Copy() }

func (a *ArrayAdapter) Macrostructure(ctx context.Context) (*MacroStructure, error) {
	return a.ms, nil
}

func (a *ArrayAdapter) Microstructure(ctx context.Context) (Dtype, error) {
	return a.arr.Dtype, nil
}

// Read follows the same axis 0 rules as SequenceReader: each position of a
// Range is taken individually, without clamping, and stacked in order.
func (a *ArrayAdapter) Read(ctx context.Context, sel Selector) (*Array, error) {
	switch s := sel.Axis0.(type) {
	case nil, Index:
		return sel.Apply(a.arr)
	case Range:
		indices := s.Sequence(a.arr.Len())
		rows := make([]*Array, len(indices))
		for k, i := range indices {
			row, err := a.arr.Index(i)
			if err != nil {
				return nil, err
			}
			rows[k] = row
		}
		arr, err := Stack(rows)
		if err != nil {
			return nil, err
		}
		if len(sel.Rest) == 0 {
			return arr, nil
		}
		return arr.Select(append([]Selection{All()}, sel.Rest...)...)
	default:
		return nil, fmt.Errorf("%w: unsupported axis 0 selection %T", ErrInvalidSelection, sel.Axis0)
	}
}

func (a *ArrayAdapter) ReadBlock(ctx context.Context, block Block, sub Selector) (*Array, error) {
	return readBlock(ctx, a, block, sub)
}
