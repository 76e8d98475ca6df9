package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyPartsDoNotCollide(t *testing.T) {
	require.NotEqual(t, NewKey("a:b", "c"), NewKey("a", "b:c"))
	require.NotEqual(t, NewKey("ab", "c"), NewKey("a", "bc"))
	require.NotEqual(t, NewKey("a", "b"), NewKey("b", "a"))
	require.Equal(t, NewKey("a", "b"), NewKey("a").With("b"))
}

func TestKeyWithInt(t *testing.T) {
	base := NewKey("reader", "fingerprint")
	require.Equal(t, base.With("5"), base.WithInt(5))
	require.NotEqual(t, base.WithInt(1, 2), base.WithInt(12))
}
