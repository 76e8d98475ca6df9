package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func writeSequence(t *testing.T, dir string, n, h, w int) {
	t.Helper()
	for i := 0; i < n; i++ {
		img := image.NewGray(image.Rect(0, 0, w, h))
		for p := range img.Pix {
			img.Pix[p] = uint8(i)
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame%03d.tif", i)))
		require.NoError(t, err)
		require.NoError(t, tiff.Encode(f, img, nil))
		require.NoError(t, f.Close())
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writeSequence(t, dir, 4, 3, 5)

	out, err := run(t, "inspect", dir, "--cache-bytes", "100000")
	require.NoError(t, err)

	var desc struct {
		Macrostructure struct {
			Shape  []int   `json:"shape"`
			Chunks [][]int `json:"chunks"`
		} `json:"macrostructure"`
		Microstructure string `json:"microstructure"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	require.Equal(t, []int{4, 3, 5}, desc.Macrostructure.Shape)
	require.Equal(t, [][]int{{1, 1, 1, 1}, {3}, {5}}, desc.Macrostructure.Chunks)
	require.Equal(t, "|u1", desc.Microstructure)
}

func TestReadBlockRaw(t *testing.T) {
	dir := t.TempDir()
	writeSequence(t, dir, 3, 2, 2)

	out, err := run(t, "read-block", dir, "2,0,0", "--raw", "--cache-bytes", "0")
	require.NoError(t, err)
	require.Equal(t, []byte{2, 2, 2, 2}, []byte(out))

	_, err = run(t, "read-block", dir, "0,1,0")
	require.Error(t, err)
}

func TestNoDetectorMatches(t *testing.T) {
	_, err := run(t, "inspect", t.TempDir())
	require.Error(t, err)
}

func TestParseBlock(t *testing.T) {
	b, err := parseBlock("3, 0,0")
	require.NoError(t, err)
	require.Equal(t, []int{3, 0, 0}, []int(b))

	_, err = parseBlock("a,0")
	require.Error(t, err)
}
