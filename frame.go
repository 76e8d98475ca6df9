package tiled

import (
	"image"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// FrameDecoder decodes one single-frame file into a 2-D (height, width)
// array.
type FrameDecoder func(r io.Reader) (*Array, error)

// DecodeTIFF decodes a TIFF image. 8-bit grayscale images decode to |u1,
// 16-bit grayscale to >u2. Any other colour model is converted to 16-bit
// grayscale.
func DecodeTIFF(r io.Reader) (*Array, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, err
	}
	return imageArray(img), nil
}

func imageArray(img image.Image) *Array {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	switch m := img.(type) {
	case *image.Gray:
		return &Array{Dtype: Uint8, Shape: []int{h, w}, Data: packRows(m.Pix, m.Stride, w, h)}
	case *image.Gray16:
		return &Array{Dtype: Uint16, Shape: []int{h, w}, Data: packRows(m.Pix, m.Stride, 2*w, h)}
	}
	g := image.NewGray16(image.Rect(0, 0, w, h))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return &Array{Dtype: Uint16, Shape: []int{h, w}, Data: g.Pix}
}

// packRows drops any padding between image rows.
func packRows(pix []byte, stride, rowBytes, h int) []byte {
	if stride == rowBytes && len(pix) == rowBytes*h {
		return pix
	}
	out := make([]byte, 0, rowBytes*h)
	for y := 0; y < h; y++ {
		out = append(out, pix[y*stride:y*stride+rowBytes]...)
	}
	return out
}
