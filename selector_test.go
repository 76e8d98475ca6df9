package tiled

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeSequence(t *testing.T) {
	cases := []struct {
		r      Range
		length int
		want   []int
	}{
		{All(), 4, []int{0, 1, 2, 3}},
		{Between(2, 5), 4, []int{2, 3, 4}},
		{Range{Start: 1, Stop: 8, Step: 3}, 10, []int{1, 4, 7}},
		{Range{Start: 5, Stop: 0, Step: -2}, 10, []int{5, 3, 1}},
		{Between(3, 3), 10, nil},
		{Range{Start: 1, Stop: ToEnd, Step: 2}, 6, []int{1, 3, 5}},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.r.Sequence(c.length), c.r.String())
	}
}

func TestRangeClamp(t *testing.T) {
	cases := []struct {
		r      Range
		length int
		want   []int
	}{
		{All(), 3, []int{0, 1, 2}},
		{Between(1, 100), 3, []int{1, 2}},
		{Between(-2, ToEnd), 5, []int{3, 4}},
		{Between(-100, 2), 5, []int{0, 1}},
		{Between(4, 2), 5, []int{}},
		{Range{Start: 0, Stop: 5, Step: 2}, 5, []int{0, 2, 4}},
		{Range{Start: -1, Stop: ToEnd, Step: -1}, 4, []int{3, 2, 1, 0}},
		{Range{Start: ToEnd, Stop: ToEnd, Step: -2}, 5, []int{4, 2, 0}},
		{Range{Start: 10, Stop: -100, Step: -3}, 5, []int{4, 1}},
		{Range{Start: 3, Stop: 1, Step: -1}, 5, []int{3, 2}},
		{Range{Start: 1, Stop: 3, Step: -1}, 5, []int{}},
		{Range{Start: -1, Stop: ToEnd, Step: -1}, 0, []int{}},
	}
	for _, c := range cases {
		got, err := c.r.clamp(c.length)
		require.NoError(t, err, c.r.String())
		require.Equal(t, c.want, got, c.r.String())
	}
}

func TestRangeString(t *testing.T) {
	require.Equal(t, "0::1", All().String())
	require.Equal(t, "2:5:1", Between(2, 5).String())
	require.Equal(t, "5:0:-2", Range{Start: 5, Stop: 0, Step: -2}.String())
}

func TestSelector(t *testing.T) {
	var zero Selector
	require.True(t, zero.IsZero())
	require.Nil(t, zero.Selections())
	require.Equal(t, "[...]", zero.String())

	s := At(3, Between(0, 2))
	require.False(t, s.IsZero())
	require.Equal(t, []Selection{Index(3), Between(0, 2)}, s.Selections())

	s = Selector{Rest: []Selection{Index(1)}}
	require.Equal(t, []Selection{All(), Index(1)}, s.Selections())

	a := arange(t, 3, 4)
	got, err := zero.Apply(a)
	require.NoError(t, err)
	require.True(t, got == a)

	got, err = Over(Between(1, 3), Index(0)).Apply(a)
	require.NoError(t, err)
	require.Equal(t, []int{2}, got.Shape)
	require.Equal(t, []int{4, 8}, values(t, got))
}

func TestResolveIndex(t *testing.T) {
	ix, err := resolveIndex(-1, 4)
	require.NoError(t, err)
	require.Equal(t, 3, ix)
	_, err = resolveIndex(4, 4)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = resolveIndex(0, 0)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}
