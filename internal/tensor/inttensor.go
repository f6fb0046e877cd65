package tensor

import "fmt"

// IntTensor is a dense int32 array with a shape, used for token and tag
// ids. It carries no gradient and never appears on the autodiff tape.
type IntTensor struct {
	data  []int32
	shape Shape
}

// NewInt creates a zero-filled int tensor with the given shape.
func NewInt(shape Shape) *IntTensor {
	return &IntTensor{
		data:  make([]int32, shape.NumElements()),
		shape: shape.Clone(),
	}
}

// IntFromSlice creates an int tensor from a Go slice. The slice is copied.
func IntFromSlice(data []int32, shape Shape) (*IntTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("tensor: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	t := NewInt(shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *IntTensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *IntTensor) NumElements() int {
	return len(t.data)
}

// Data returns the flat backing slice (zero-copy).
func (t *IntTensor) Data() []int32 {
	return t.data
}

// At returns the element at the given indices.
func (t *IntTensor) At(indices ...int) int32 {
	return t.data[t.shape.offset(indices)]
}

// Set stores value at the given indices.
func (t *IntTensor) Set(value int32, indices ...int) {
	t.data[t.shape.offset(indices)] = value
}

// Clone returns a deep copy of the tensor.
func (t *IntTensor) Clone() *IntTensor {
	out := NewInt(t.shape)
	copy(out.data, t.data)
	return out
}

// String returns a human-readable summary.
func (t *IntTensor) String() string {
	return fmt.Sprintf("IntTensor%v", t.shape)
}
