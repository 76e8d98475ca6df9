package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAvailableBytes(t *testing.T) {
	n, err := ResolveAvailableBytes(1000)
	require.NoError(t, err)
	require.Equal(t, int64(1000), n)

	n, err = ResolveAvailableBytes(0)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	_, err = ResolveAvailableBytes(-1)
	require.Error(t, err)

	n, err = ResolveAvailableBytes(0.1)
	require.NoError(t, err)
	require.Greater(t, n, int64(0))
}
