package tiled

import (
	"fmt"
)

// Array is a materialized N-dimensional array. Data holds Shape elements in
// row-major order, each encoded as Dtype describes.
type Array struct {
	Dtype Dtype  `json:"dtype"`
	Shape []int  `json:"shape"`
	Data  []byte `json:"-"`
}

// NewArray wraps data, checking its length against dtype and shape.
func NewArray(dt Dtype, shape []int, data []byte) (*Array, error) {
	want := product(shape) * dt.ByteSize
	if len(data) != want {
		return nil, fmt.Errorf("%w: %d bytes for shape %v of %s, want %d", ErrInvalidStructure, len(data), shape, dt, want)
	}
	return &Array{Dtype: dt, Shape: shape, Data: data}, nil
}

// NDim is the number of axes.
func (a *Array) NDim() int { return len(a.Shape) }

// Len is the length of axis 0.
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Nbytes is the size of the element buffer.
func (a *Array) Nbytes() int64 { return int64(len(a.Data)) }

// strides returns the byte distance between consecutive positions on each
// axis.
func (a *Array) strides() []int {
	return stridesFor(a.Shape, a.Dtype.ByteSize)
}

func stridesFor(shape []int, itemSize int) []int {
	strides := make([]int, len(shape))
	s := itemSize
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = s
		s *= shape[d]
	}
	return strides
}

// At returns the encoded bytes of the element at idx.
func (a *Array) At(idx ...int) ([]byte, error) {
	if len(idx) != len(a.Shape) {
		return nil, fmt.Errorf("%w: %d indices for %d-dimensional array", ErrInvalidSelection, len(idx), len(a.Shape))
	}
	off := 0
	strides := a.strides()
	for d, i := range idx {
		ix, err := resolveIndex(i, a.Shape[d])
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}
		off += ix * strides[d]
	}
	return a.Data[off : off+a.Dtype.ByteSize], nil
}

// Uint reads the element at idx as an unsigned integer. It only makes sense
// for integer dtypes of up to 8 bytes.
func (a *Array) Uint(idx ...int) (uint64, error) {
	b, err := a.At(idx...)
	if err != nil {
		return 0, err
	}
	switch a.Dtype.ByteSize {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(a.Dtype.Order().Uint16(b)), nil
	case 4:
		return uint64(a.Dtype.Order().Uint32(b)), nil
	case 8:
		return a.Dtype.Order().Uint64(b), nil
	default:
		return 0, fmt.Errorf("cannot read %s as an unsigned integer", a.Dtype)
	}
}

// Index selects position i of axis 0, dropping the axis.
func (a *Array) Index(i int) (*Array, error) {
	return a.Select(Index(i))
}

// Select applies one selection per leading axis; axes without a selection
// are kept whole. Index selections drop their axis, Range selections clamp
// to it and may step backwards.
func (a *Array) Select(sels ...Selection) (*Array, error) {
	if len(sels) > len(a.Shape) {
		return nil, fmt.Errorf("%w: %d selections for %d-dimensional array", ErrInvalidSelection, len(sels), len(a.Shape))
	}

	// positions along every axis, and whether the axis survives
	picks := make([][]int, len(a.Shape))
	keep := make([]bool, len(a.Shape))
	for d, n := range a.Shape {
		var sel Selection = All()
		if d < len(sels) {
			sel = sels[d]
		}
		switch s := sel.(type) {
		case Index:
			ix, err := resolveIndex(int(s), n)
			if err != nil {
				return nil, fmt.Errorf("axis %d: %w", d, err)
			}
			picks[d] = []int{ix}
		case Range:
			ix, err := s.clamp(n)
			if err != nil {
				return nil, fmt.Errorf("axis %d: %w", d, err)
			}
			picks[d] = ix
			keep[d] = true
		default:
			return nil, fmt.Errorf("%w: unsupported selection %T", ErrInvalidSelection, sel)
		}
	}

	shape := []int{}
	count := 1
	for d, p := range picks {
		count *= len(p)
		if keep[d] {
			shape = append(shape, len(p))
		}
	}

	itemSize := a.Dtype.ByteSize
	out := make([]byte, 0, count*itemSize)
	if count > 0 {
		out = gather(out, a.Data, a.strides(), picks, 0, 0, itemSize)
	}
	return &Array{Dtype: a.Dtype, Shape: shape, Data: out}, nil
}

// gather appends the elements addressed by picks to dst in row-major order.
func gather(dst, src []byte, strides []int, picks [][]int, dim, offset, itemSize int) []byte {
	if dim == len(picks) {
		return append(dst, src[offset:offset+itemSize]...)
	}
	if dim == len(picks)-1 && isContiguous(picks[dim]) {
		// Innermost dimension - copy contiguously
		start := offset + picks[dim][0]*strides[dim]
		return append(dst, src[start:start+len(picks[dim])*itemSize]...)
	}
	for _, ix := range picks[dim] {
		dst = gather(dst, src, strides, picks, dim+1, offset+ix*strides[dim], itemSize)
	}
	return dst
}

func isContiguous(ix []int) bool {
	for i := 1; i < len(ix); i++ {
		if ix[i] != ix[i-1]+1 {
			return false
		}
	}
	return len(ix) > 0
}

// Stack joins arrays of identical dtype and shape along a new leading axis,
// in the order given.
func Stack(arrs []*Array) (*Array, error) {
	if len(arrs) == 0 {
		return nil, fmt.Errorf("%w: need at least one array to stack", ErrInvalidSelection)
	}
	first := arrs[0]
	data := make([]byte, 0, len(first.Data)*len(arrs))
	for i, a := range arrs {
		if a.Dtype != first.Dtype {
			return nil, fmt.Errorf("%w: array %d has dtype %s, want %s", ErrInvalidStructure, i, a.Dtype, first.Dtype)
		}
		if !sameShape(a.Shape, first.Shape) {
			return nil, fmt.Errorf("%w: array %d has shape %v, want %v", ErrInvalidStructure, i, a.Shape, first.Shape)
		}
		data = append(data, a.Data...)
	}
	shape := append([]int{len(arrs)}, first.Shape...)
	return &Array{Dtype: first.Dtype, Shape: shape, Data: data}, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
