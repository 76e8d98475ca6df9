package tiled

import (
	"fmt"
	"math"
)

// ToEnd as a Range stop selects through the end of the axis.
const ToEnd = math.MaxInt

// Selection picks elements along a single axis. It is either an Index or a
// Range.
type Selection interface {
	selection()
}

// Index selects one position along an axis and drops the axis from the
// result. Negative values count back from the end.
type Index int

// Range selects positions Start, Start+Step, ... up to but excluding Stop. A
// zero Step means 1.
type Range struct {
	Start int
	Stop  int
	Step  int
}

func (Index) selection() {}
func (Range) selection() {}

// All selects every position along an axis.
func All() Range { return Range{Stop: ToEnd} }

// Between selects [start, stop) with unit step.
func Between(start, stop int) Range { return Range{Start: start, Stop: stop} }

func (r Range) step() int {
	if r.Step == 0 {
		return 1
	}
	return r.Step
}

func (r Range) String() string {
	stop := fmt.Sprint(r.Stop)
	if r.Stop == ToEnd {
		stop = ""
	}
	return fmt.Sprintf("%d:%s:%d", r.Start, stop, r.step())
}

// Sequence enumerates the range the way a for loop would, without clamping
// to an axis: every value from Start towards Stop in Step increments. A Stop
// of ToEnd is taken to mean length. Callers are responsible for the values
// being addressable.
func (r Range) Sequence(length int) []int {
	stop := r.Stop
	if stop == ToEnd {
		stop = length
	}
	step := r.step()
	var out []int
	if step > 0 {
		for i := r.Start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := r.Start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out
}

// clamp resolves the range against an axis of the given length with the
// clamping rules of slice expressions: negative bounds count from the end and
// out-of-range bounds are pulled back to the axis. With a negative step the
// range runs backwards from Start, and a Stop of ToEnd runs through index 0,
// so Range{Start: -1, Stop: ToEnd, Step: -1} reverses an axis.
func (r Range) clamp(length int) ([]int, error) {
	step := r.step()
	lo, hi := 0, length
	if step < 0 {
		lo, hi = -1, length-1
	}
	bound := func(v int) int {
		if v < 0 {
			v += length
		}
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	start := bound(r.Start)
	stop := hi
	if r.Stop != ToEnd {
		stop = bound(r.Stop)
	} else if step < 0 {
		stop = lo
	}

	out := []int{}
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}

func resolveIndex(i, length int) (int, error) {
	ix := i
	if ix < 0 {
		ix += length
	}
	if ix < 0 || ix >= length {
		return 0, fmt.Errorf("%w: index %d for axis of length %d", ErrIndexOutOfBounds, i, length)
	}
	return ix, nil
}

// Selector addresses part of an array served by an Adapter. Axis0 picks
// along the first axis; Rest is applied to the remaining axes of whatever
// Axis0 produced. The zero Selector selects the whole array.
type Selector struct {
	Axis0 Selection
	Rest  []Selection
}

// At selects position i along axis 0, then rest.
func At(i int, rest ...Selection) Selector {
	return Selector{Axis0: Index(i), Rest: rest}
}

// Over selects r along axis 0, then rest.
func Over(r Range, rest ...Selection) Selector {
	return Selector{Axis0: r, Rest: rest}
}

// IsZero reports whether s selects everything.
func (s Selector) IsZero() bool {
	return s.Axis0 == nil && len(s.Rest) == 0
}

// Selections flattens s into per-axis selections starting at axis 0.
func (s Selector) Selections() []Selection {
	if s.IsZero() {
		return nil
	}
	var axis0 Selection = All()
	if s.Axis0 != nil {
		axis0 = s.Axis0
	}
	return append([]Selection{axis0}, s.Rest...)
}

// Apply indexes a materialized array with s.
func (s Selector) Apply(a *Array) (*Array, error) {
	if s.IsZero() {
		return a, nil
	}
	return a.Select(s.Selections()...)
}

func (s Selector) String() string {
	if s.IsZero() {
		return "[...]"
	}
	return fmt.Sprint(s.Selections())
}
