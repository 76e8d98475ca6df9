package tiled

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"testing"

	"github.com/qri-io/dataset/compression"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/qri-io/tiled-go/cache"
)

// frameValue is the pixel value written at (y, x) of frame i, so every
// element of a fixture identifies where it came from.
func frameValue(i, y, x int) uint16 {
	return uint16(i*1000 + y*10 + x)
}

func encodeFrame(t *testing.T, i, h, w int) []byte {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			binary.BigEndian.PutUint16(img.Pix[y*img.Stride+2*x:], frameValue(i, y, x))
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, tiff.Encode(buf, img, nil))
	return buf.Bytes()
}

// putFrames writes n frames named like img000.tif into s.
func putFrames(t *testing.T, s Store, n, h, w int) []string {
	t.Helper()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("img%03d.tif", i)
		require.NoError(t, s.Put(names[i], bytes.NewReader(encodeFrame(t, i, h, w))))
	}
	return names
}

func putCompressedFrames(t *testing.T, s Store, format string, n, h, w int) {
	t.Helper()
	for i := 0; i < n; i++ {
		buf := &bytes.Buffer{}
		cw, err := compression.Compressor(format, buf)
		require.NoError(t, err)
		_, err = cw.Write(encodeFrame(t, i, h, w))
		require.NoError(t, err)
		require.NoError(t, cw.Close())
		require.NoError(t, s.Put(fmt.Sprintf("img%03d.tif.%s", i, format), buf))
	}
}

func putFiles(t *testing.T, s Store, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, s.Put(n, bytes.NewReader([]byte("not a frame"))))
	}
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Options{MaxEntries: 1000})
	require.NoError(t, err)
	return c
}

func sniffMemory(t *testing.T, s Store, oc *cache.Cache) *SequenceReader {
	t.Helper()
	opts := DefaultSequenceOptions()
	opts.Cache = oc
	r, ok, err := SniffStore(context.Background(), s, opts)
	require.NoError(t, err)
	require.True(t, ok)
	return r
}

// requireFrame checks that arr is frame i, restricted to rows ys and
// columns xs.
func requireFrame(t *testing.T, arr *Array, i int, ys, xs []int) {
	t.Helper()
	require.Equal(t, []int{len(ys), len(xs)}, arr.Shape)
	for a, y := range ys {
		for b, x := range xs {
			v, err := arr.Uint(a, b)
			require.NoError(t, err)
			require.Equal(t, uint64(frameValue(i, y, x)), v, "frame %d at (%d, %d)", i, y, x)
		}
	}
}

func span(start, stop int) []int {
	out := []int{}
	for i := start; i < stop; i++ {
		out = append(out, i)
	}
	return out
}
