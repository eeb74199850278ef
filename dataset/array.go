package dataset

import (
	"fmt"
	"math"
)

// Dimension names a pose dataset is built from.
const (
	DimTime        = "time"
	DimIndividuals = "individuals"
	DimKeypoints   = "keypoints"
	DimSpace       = "space"
	DimSpacePolar  = "space_pol"
)

// Array is a dense, row-major, labeled multi-dimensional array of float64
// values. It is the thin slice of a labeled-array engine this library needs:
// named dimensions, optional string coordinate labels per dimension, and a
// flat backing buffer. Missing samples are represented as NaN.
type Array struct {
	dims   []string
	shape  []int
	coords map[string][]string
	data   []float64
}

// NewArray builds an array with the given dimension names and shape. If data
// is nil a zero-filled buffer is allocated; otherwise its length must match
// the product of the shape. The backing slice is used directly, not copied.
func NewArray(dims []string, shape []int, data []float64) (*Array, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("got %d dimension names for %d axes", len(dims), len(shape))
	}
	seen := make(map[string]bool, len(dims))
	size := 1
	for i, d := range dims {
		if d == "" {
			return nil, fmt.Errorf("axis %d has an empty dimension name", i)
		}
		if seen[d] {
			return nil, fmt.Errorf("duplicate dimension name %q", d)
		}
		seen[d] = true
		if shape[i] <= 0 {
			return nil, fmt.Errorf("dimension %q has non-positive length %d", d, shape[i])
		}
		size *= shape[i]
	}
	if data == nil {
		data = make([]float64, size)
	} else if len(data) != size {
		return nil, fmt.Errorf("data length %d does not match shape size %d", len(data), size)
	}
	return &Array{
		dims:   append([]string(nil), dims...),
		shape:  append([]int(nil), shape...),
		coords: make(map[string][]string),
		data:   data,
	}, nil
}

// Dims returns the dimension names in storage order.
func (a *Array) Dims() []string { return a.dims }

// Shape returns the axis lengths in storage order.
func (a *Array) Shape() []int { return a.shape }

// Data returns the backing buffer in row-major order. Mutations are visible
// to every holder of the array.
func (a *Array) Data() []float64 { return a.data }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Axis returns the storage position of dim, or -1 if absent.
func (a *Array) Axis(dim string) int {
	for i, d := range a.dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// HasDim reports whether dim is one of the array's dimensions.
func (a *Array) HasDim(dim string) bool { return a.Axis(dim) >= 0 }

// DimLen returns the length of dim, or an error if the array lacks it.
func (a *Array) DimLen(dim string) (int, error) {
	ax := a.Axis(dim)
	if ax < 0 {
		return 0, fmt.Errorf("array has no dimension %q", dim)
	}
	return a.shape[ax], nil
}

// SetCoords attaches string coordinate labels to dim. The label count must
// match the dimension length.
func (a *Array) SetCoords(dim string, labels []string) error {
	ax := a.Axis(dim)
	if ax < 0 {
		return fmt.Errorf("array has no dimension %q", dim)
	}
	if len(labels) != a.shape[ax] {
		return fmt.Errorf("dimension %q has length %d but got %d labels", dim, a.shape[ax], len(labels))
	}
	a.coords[dim] = append([]string(nil), labels...)
	return nil
}

// Coords returns the coordinate labels attached to dim, or nil.
func (a *Array) Coords(dim string) []string { return a.coords[dim] }

// CoordIndex returns the position of label along dim.
func (a *Array) CoordIndex(dim, label string) (int, error) {
	labels, ok := a.coords[dim]
	if !ok {
		return 0, fmt.Errorf("dimension %q has no coordinate labels", dim)
	}
	for i, l := range labels {
		if l == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("label %q not found along dimension %q", label, dim)
}

// strides returns the row-major stride of each axis.
func (a *Array) strides() []int {
	st := make([]int, len(a.shape))
	acc := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= a.shape[i]
	}
	return st
}

// flatIndex converts a multi-index to a flat offset.
func (a *Array) flatIndex(ix []int) int {
	if len(ix) != len(a.shape) {
		panic(fmt.Sprintf("array: got %d indices for %d axes", len(ix), len(a.shape)))
	}
	off := 0
	st := a.strides()
	for i, v := range ix {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("array: index %d out of range for dimension %q (length %d)",
				v, a.dims[i], a.shape[i]))
		}
		off += v * st[i]
	}
	return off
}

// At returns the element at the given multi-index.
func (a *Array) At(ix ...int) float64 { return a.data[a.flatIndex(ix)] }

// Set stores v at the given multi-index.
func (a *Array) Set(v float64, ix ...int) { a.data[a.flatIndex(ix)] = v }

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	out := &Array{
		dims:   append([]string(nil), a.dims...),
		shape:  append([]int(nil), a.shape...),
		coords: make(map[string][]string, len(a.coords)),
		data:   append([]float64(nil), a.data...),
	}
	for d, labels := range a.coords {
		out.coords[d] = append([]string(nil), labels...)
	}
	return out
}

// SameShape reports whether b has identical dimension names and lengths.
func (a *Array) SameShape(b *Array) bool {
	if b == nil || len(a.dims) != len(b.dims) {
		return false
	}
	for i := range a.dims {
		if a.dims[i] != b.dims[i] || a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// RenameDim renames a dimension in place, moving any coordinate labels with
// it. Used for coordinate-system changes such as space -> space_pol.
func (a *Array) RenameDim(old, new string) error {
	ax := a.Axis(old)
	if ax < 0 {
		return fmt.Errorf("array has no dimension %q", old)
	}
	if a.HasDim(new) {
		return fmt.Errorf("array already has a dimension %q", new)
	}
	a.dims[ax] = new
	if labels, ok := a.coords[old]; ok {
		delete(a.coords, old)
		a.coords[new] = labels
	}
	return nil
}

// EachLane visits every 1-D lane along dim in row-major order of the
// remaining dimensions. The callback receives the lane ordinal, which equals
// the flat offset into an array with dim removed, and the flat offsets of the
// lane's elements in storage order along dim. The offsets slice is reused
// between calls.
func (a *Array) EachLane(dim string, f func(lane int, offsets []int)) error {
	ax := a.Axis(dim)
	if ax < 0 {
		return fmt.Errorf("array has no dimension %q", dim)
	}
	st := a.strides()
	n := a.shape[ax]

	restShape := make([]int, 0, len(a.shape)-1)
	restStrides := make([]int, 0, len(a.shape)-1)
	lanes := 1
	for i := range a.shape {
		if i == ax {
			continue
		}
		restShape = append(restShape, a.shape[i])
		restStrides = append(restStrides, st[i])
		lanes *= a.shape[i]
	}

	offsets := make([]int, n)
	idx := make([]int, len(restShape))
	for lane := 0; lane < lanes; lane++ {
		base := 0
		for i, v := range idx {
			base += v * restStrides[i]
		}
		for j := 0; j < n; j++ {
			offsets[j] = base + j*st[ax]
		}
		f(lane, offsets)
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < restShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return nil
}

// SelectIndex returns a copy of the array with dim fixed at position at,
// dropping the dimension.
func (a *Array) SelectIndex(dim string, at int) (*Array, error) {
	ax := a.Axis(dim)
	if ax < 0 {
		return nil, fmt.Errorf("array has no dimension %q", dim)
	}
	if at < 0 || at >= a.shape[ax] {
		return nil, fmt.Errorf("index %d out of range for dimension %q (length %d)", at, dim, a.shape[ax])
	}

	outDims := make([]string, 0, len(a.dims)-1)
	outShape := make([]int, 0, len(a.shape)-1)
	for i := range a.dims {
		if i == ax {
			continue
		}
		outDims = append(outDims, a.dims[i])
		outShape = append(outShape, a.shape[i])
	}
	out, err := NewArray(outDims, outShape, nil)
	if err != nil {
		return nil, err
	}
	for d, labels := range a.coords {
		if d == dim {
			continue
		}
		out.coords[d] = append([]string(nil), labels...)
	}
	if err := a.EachLane(dim, func(lane int, offsets []int) {
		out.data[lane] = a.data[offsets[at]]
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectLabel returns a copy of the array with dim fixed at the position of
// label, dropping the dimension.
func (a *Array) SelectLabel(dim, label string) (*Array, error) {
	at, err := a.CoordIndex(dim, label)
	if err != nil {
		return nil, err
	}
	return a.SelectIndex(dim, at)
}

// CountNaN returns the number of NaN elements.
func (a *Array) CountNaN() int {
	n := 0
	for _, v := range a.data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
