package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convtag-ml/convtag/internal/tensor"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, tensor.Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.Equal(t, 0, tensor.Shape{0, 5}.NumElements())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, tensor.Shape{2, 3}.Equal(tensor.Shape{2, 3}))
	assert.False(t, tensor.Shape{2, 3}.Equal(tensor.Shape{3, 2}))
	assert.False(t, tensor.Shape{2, 3}.Equal(tensor.Shape{2, 3, 1}))
}

func TestShapeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, tensor.Shape{2, 3, 4}.Strides())
	assert.Equal(t, []int{1}, tensor.Shape{7}.Strides())
}

func TestFromSlice(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 4.0, x.At(1, 0))

	_, err = tensor.FromSlice([]float64{1, 2}, tensor.Shape{3})
	assert.Error(t, err)
}

func TestSetAt(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 2})
	x.Set(3.5, 1, 0)
	assert.Equal(t, 3.5, x.At(1, 0))
	assert.Equal(t, 0.0, x.At(0, 1))

	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
}

func TestCloneIsDeep(t *testing.T) {
	x := tensor.Ones(tensor.Shape{3})
	y := x.Clone()
	y.Set(9, 0)
	assert.Equal(t, 1.0, x.At(0))
	assert.Equal(t, 9.0, y.At(0))
}

func TestReshapeSharesData(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	y := x.Reshape(3, 2)
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	y.Set(42, 0, 0)
	assert.Equal(t, 42.0, x.At(0, 0))

	assert.Panics(t, func() { x.Reshape(4, 2) })
}

func TestAdd(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
	b, _ := tensor.FromSlice([]float64{10, 20, 30}, tensor.Shape{3})

	c := tensor.Add(a, b)
	assert.Equal(t, []float64{11, 22, 33}, c.Data())
	// Inputs untouched.
	assert.Equal(t, []float64{1, 2, 3}, a.Data())

	a.AddInPlace(b)
	assert.Equal(t, []float64{11, 22, 33}, a.Data())

	a.AddScaled(2, b)
	assert.Equal(t, []float64{31, 62, 93}, a.Data())

	assert.Panics(t, func() { tensor.Add(a, tensor.Zeros(tensor.Shape{2})) })
}

func TestScale(t *testing.T) {
	x, _ := tensor.FromSlice([]float64{1, -2, 4}, tensor.Shape{3})
	x.Scale(0.5)
	assert.Equal(t, []float64{0.5, -1, 2}, x.Data())
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 2, tensor.Argmax([]float64{0.1, 0.3, 0.9, 0.2}))
	assert.Equal(t, 0, tensor.Argmax([]float64{5}))
}

func TestItem(t *testing.T) {
	x := tensor.Full(tensor.Shape{1}, 2.5)
	assert.Equal(t, 2.5, x.Item())
	assert.Panics(t, func() { tensor.Zeros(tensor.Shape{2}).Item() })
}

func TestIntTensor(t *testing.T) {
	ids, err := tensor.IntFromSlice([]int32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	assert.Equal(t, int32(3), ids.At(1, 0))
	ids.Set(7, 0, 1)
	assert.Equal(t, int32(7), ids.At(0, 1))

	clone := ids.Clone()
	clone.Set(0, 0, 0)
	assert.Equal(t, int32(1), ids.At(0, 0))

	_, err = tensor.IntFromSlice([]int32{1}, tensor.Shape{2})
	assert.Error(t, err)
}

func TestRandnStddev(t *testing.T) {
	x := tensor.Randn(tensor.Shape{10000}, 0.1)

	var sum, sumSq float64
	for _, v := range x.Data() {
		sum += v
		sumSq += v * v
	}
	n := float64(x.NumElements())
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 0.0, mean, 0.01)
	assert.InDelta(t, 0.01, variance, 0.002)
}
