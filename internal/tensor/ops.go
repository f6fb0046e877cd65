package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Add returns a new tensor holding a + b elementwise.
// Panics if the shapes differ.
func Add(a, b *Tensor) *Tensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: Add shape mismatch %v vs %v", a.shape, b.shape))
	}
	out := a.Clone()
	floats.Add(out.data, b.data)
	return out
}

// AddInPlace accumulates other into t elementwise.
// Panics if the shapes differ.
func (t *Tensor) AddInPlace(other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: AddInPlace shape mismatch %v vs %v", t.shape, other.shape))
	}
	floats.Add(t.data, other.data)
}

// AddScaled accumulates c*src into t elementwise.
// Panics if the shapes differ.
func (t *Tensor) AddScaled(c float64, src *Tensor) {
	if !t.shape.Equal(src.shape) {
		panic(fmt.Sprintf("tensor: AddScaled shape mismatch %v vs %v", t.shape, src.shape))
	}
	floats.AddScaled(t.data, c, src.data)
}

// Scale multiplies every element of t by c in place.
func (t *Tensor) Scale(c float64) {
	floats.Scale(c, t.data)
}

// Dot returns the dot product of two equally sized slices.
// Inner-loop kernel for the affine and convolution ops.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Argmax returns the index of the maximum value in the slice.
func Argmax(z []float64) int {
	return floats.MaxIdx(z)
}
