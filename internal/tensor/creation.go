package tensor

import "math/rand"

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Randn creates a tensor with values drawn from N(0, stddev²).
//
// Uses the package-level math/rand source; seed it for reproducible
// initialization.
func Randn(shape Shape, stddev float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		//nolint:gosec // math/rand is appropriate for weight initialization
		t.data[i] = rand.NormFloat64() * stddev
	}
	return t
}
