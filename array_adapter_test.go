package tiled

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayAdapterBlocks(t *testing.T) {
	ctx := context.Background()
	a, err := NewRegularArrayAdapter(arange(t, 5, 6), []int{2, 4}, Attributes{"name": "grid"})
	require.NoError(t, err)

	ms, err := a.Macrostructure(ctx)
	require.NoError(t, err)
	require.Equal(t, [][]int{{2, 2, 1}, {4, 2}}, ms.Chunks)
	dt, err := a.Microstructure(ctx)
	require.NoError(t, err)
	require.Equal(t, Uint8, dt)
	require.Equal(t, "grid", a.Metadata()["name"])

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			b := Block{i, j}
			arr, err := a.ReadBlock(ctx, b, Selector{})
			require.NoError(t, err)
			shape, err := BlockShape(b, ms)
			require.NoError(t, err)
			require.Equal(t, shape, arr.Shape, b.String())

			spans, err := BlockToSlice(b, ms)
			require.NoError(t, err)
			v, err := arr.Uint(0, 0)
			require.NoError(t, err)
			require.Equal(t, uint64(spans[0].Start*6+spans[1].Start), v, b.String())
		}
	}

	arr, err := a.ReadBlock(ctx, Block{1, 0}, At(1, Between(1, 3)))
	require.NoError(t, err)
	require.Equal(t, []int{19, 20}, values(t, arr))

	_, err = a.ReadBlock(ctx, Block{3, 0}, Selector{})
	require.ErrorIs(t, err, ErrBlockIndexOutOfRange)
}

func TestArrayAdapterRead(t *testing.T) {
	ctx := context.Background()
	a, err := NewArrayAdapter(arange(t, 4, 3), nil, nil)
	require.NoError(t, err)

	ms, err := a.Macrostructure(ctx)
	require.NoError(t, err)
	require.Equal(t, [][]int{{4}, {3}}, ms.Chunks)
	require.Empty(t, a.Metadata())

	arr, err := a.Read(ctx, Over(Range{Start: 3, Stop: 0, Step: -2}, Index(2)))
	require.NoError(t, err)
	require.Equal(t, []int{11, 5}, values(t, arr))

	_, err = a.Read(ctx, Over(Between(2, 6)))
	require.ErrorIs(t, err, ErrIndexOutOfBounds)

	arr, err = a.Read(ctx, At(-1))
	require.NoError(t, err)
	require.Equal(t, []int{9, 10, 11}, values(t, arr))

	_, err = NewArrayAdapter(arange(t, 4, 3), [][]int{{2, 1}, {3}}, nil)
	require.ErrorIs(t, err, ErrInvalidStructure)
}
