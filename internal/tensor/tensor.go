// Package tensor provides the dense in-memory arrays the tagger computes
// with: a float64 Tensor for activations, weights and masks, and an int32
// IntTensor for token and tag ids.
//
// All tensors are contiguous and row-major, and live on the CPU. Shape
// violations are programming errors and panic; recoverable conditions are
// reported as errors by the packages building on top of this one.
package tensor

import "fmt"

// Tensor is a dense float64 array with a shape.
type Tensor struct {
	data  []float64
	shape Shape
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return &Tensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
	}
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("tensor: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the flat backing slice (zero-copy).
//
// Modifications to the returned slice modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.shape.offset(indices)]
}

// Set stores value at the given indices.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.shape.offset(indices)] = value
}

// Item returns the value of a single-element tensor.
// Panics otherwise.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor: Item() requires a single-element tensor, got shape %v", t.shape))
	}
	return t.data[0]
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := New(t.shape)
	copy(out.data, t.data)
	return out
}

// Reshape returns a tensor with the same data and a new shape.
//
// The data is shared, not copied; the element count must match.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v", t.shape, shape))
	}
	return &Tensor{data: t.data, shape: shape.Clone()}
}

// String returns a human-readable summary.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
