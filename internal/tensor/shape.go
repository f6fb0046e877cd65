package tensor

import (
	"fmt"
	"strings"
)

// Shape describes the dimensions of a tensor.
//
// Shapes are row-major: the last dimension varies fastest in memory.
// An empty Shape describes a scalar.
type Shape []int

// NumElements returns the total number of elements a tensor with this
// shape holds. A scalar shape has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, dim := range s {
		if dim != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Strides returns the row-major strides for this shape.
//
// stride[i] is the number of elements to skip to advance one step
// along dimension i.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

// String returns a compact representation like [32, 50, 128].
func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, dim := range s {
		dims[i] = fmt.Sprintf("%d", dim)
	}
	return "[" + strings.Join(dims, ", ") + "]"
}

// offset converts multi-dimensional indices into a flat data offset.
// Panics if the number of indices or any index is out of range.
func (s Shape) offset(indices []int) int {
	if len(indices) != len(s) {
		panic(fmt.Sprintf("tensor: expected %d indices for shape %v, got %d", len(s), s, len(indices)))
	}
	off := 0
	strides := s.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= s[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (size %d)", idx, i, s[i]))
		}
		off += idx * strides[i]
	}
	return off
}
