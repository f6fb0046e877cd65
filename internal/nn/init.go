package nn

import (
	"math"
	"math/rand"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// Xavier initializes a weight tensor with the Glorot uniform
// distribution U(-b, b), b = sqrt(6 / (fanIn + fanOut)), which keeps the
// activation variance roughly constant across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is appropriate for weight initialization
		data[i] = (rand.Float64()*2 - 1) * bound
	}
	return t
}

// Normal initializes a tensor from N(0, variance).
func Normal(shape tensor.Shape, variance float64) *tensor.Tensor {
	return tensor.Randn(shape, math.Sqrt(variance))
}
