package tiled

import "context"

// Adapter is implemented by every array-backed data source. Each storage
// format provides its own Adapter and a Detector that recognizes it.
type Adapter interface {
	// Metadata returns descriptive attributes. It has no side effects.
	Metadata() Attributes
	// Macrostructure returns the shape and chunk grid. It is computed at
	// most once per adapter, on first successful call.
	Macrostructure(ctx context.Context) (*MacroStructure, error)
	// Microstructure returns the element encoding.
	Microstructure(ctx context.Context) (Dtype, error)
	// Read materializes the part of the array sel selects.
	Read(ctx context.Context, sel Selector) (*Array, error)
	// ReadBlock materializes exactly one chunk of the grid, optionally
	// narrowed by sub in the chunk's own coordinates. Blocks outside the
	// grid fail with ErrBlockIndexOutOfRange.
	ReadBlock(ctx context.Context, block Block, sub Selector) (*Array, error)
}

// readBlock implements Adapter.ReadBlock for adapters whose Read can serve
// arbitrary rectangular selections.
func readBlock(ctx context.Context, a Adapter, block Block, sub Selector) (*Array, error) {
	ms, err := a.Macrostructure(ctx)
	if err != nil {
		return nil, err
	}
	spans, err := BlockToSlice(block, ms)
	if err != nil {
		return nil, err
	}
	arr, err := a.Read(ctx, blockSelector(spans))
	if err != nil {
		return nil, err
	}
	return sub.Apply(arr)
}
