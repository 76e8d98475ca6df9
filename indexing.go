package tiled

import "fmt"

// Block is a coordinate into a chunk grid, one chunk index per axis. It
// indexes chunks, not array elements.
type Block []int

func (b Block) String() string {
	return fmt.Sprint([]int(b))
}

// Span is the half-open element range [Start, Stop) a block covers on one
// axis.
type Span struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Len is the number of elements in the span.
func (s Span) Len() int { return s.Stop - s.Start }

// Range converts the span to a unit-step selection.
func (s Span) Range() Range { return Range{Start: s.Start, Stop: s.Stop, Step: 1} }

// BlockToSlice maps a block coordinate to the element range it covers on each
// axis of ms. A block of the wrong dimensionality, or with any axis index
// outside the grid, fails with ErrBlockIndexOutOfRange.
func BlockToSlice(block Block, ms *MacroStructure) ([]Span, error) {
	if err := checkBlock(block, ms); err != nil {
		return nil, err
	}
	spans := make([]Span, len(block))
	for d, ix := range block {
		start := 0
		for _, c := range ms.Chunks[d][:ix] {
			start += c
		}
		spans[d] = Span{Start: start, Stop: start + ms.Chunks[d][ix]}
	}
	return spans, nil
}

// BlockShape returns the shape of the chunk addressed by block.
func BlockShape(block Block, ms *MacroStructure) ([]int, error) {
	if err := checkBlock(block, ms); err != nil {
		return nil, err
	}
	shape := make([]int, len(block))
	for d, ix := range block {
		shape[d] = ms.Chunks[d][ix]
	}
	return shape, nil
}

func checkBlock(block Block, ms *MacroStructure) error {
	if len(block) != len(ms.Chunks) {
		return &BlockIndexError{
			Block:  block,
			Axis:   -1,
			Reason: fmt.Sprintf("got %d axes, grid has %d", len(block), len(ms.Chunks)),
		}
	}
	for d, ix := range block {
		if ix < 0 || ix >= len(ms.Chunks[d]) {
			return &BlockIndexError{
				Block:  block,
				Axis:   d,
				Reason: fmt.Sprintf("index %d not in [0, %d)", ix, len(ms.Chunks[d])),
			}
		}
	}
	return nil
}

// blockSelector converts the spans of a block into a Selector over the full
// array.
func blockSelector(spans []Span) Selector {
	if len(spans) == 0 {
		return Selector{}
	}
	sel := Selector{Axis0: spans[0].Range()}
	for _, s := range spans[1:] {
		sel.Rest = append(sel.Rest, s.Range())
	}
	return sel
}
