package ops_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

func TestReLUForward(t *testing.T) {
	in, err := tensor.FromSlice([]float64{-2, -0.5, 0, 0.5, 3}, tensor.Shape{5})
	require.NoError(t, err)

	out := ops.ReLUForward(in)
	assert.Equal(t, []float64{0, 0, 0, 0.5, 3}, out.Data())
}

func TestReLUBackward(t *testing.T) {
	in, _ := tensor.FromSlice([]float64{-1, 2, -3, 4}, tensor.Shape{4})
	out := ops.ReLUForward(in)

	og, _ := tensor.FromSlice([]float64{10, 20, 30, 40}, tensor.Shape{4})
	grads := ops.NewReLUOp(in, out).Backward(og)

	require.Len(t, grads, 1)
	assert.Equal(t, []float64{0, 20, 0, 40}, grads[0].Data())
}

func TestEmbeddingForwardGather(t *testing.T) {
	weight, _ := tensor.FromSlice([]float64{
		0, 0,
		1, 10,
		2, 20,
	}, tensor.Shape{3, 2})
	ids, _ := tensor.IntFromSlice([]int32{2, 1, 2}, tensor.Shape{1, 3})

	out := ops.EmbeddingForward(weight, ids)
	assert.Equal(t, tensor.Shape{1, 3, 2}, out.Shape())
	assert.Equal(t, []float64{2, 20, 1, 10, 2, 20}, out.Data())

	badIDs, _ := tensor.IntFromSlice([]int32{3}, tensor.Shape{1})
	assert.Panics(t, func() { ops.EmbeddingForward(weight, badIDs) })
}

func TestDropoutKeepOne(t *testing.T) {
	in, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})

	out, mask := ops.DropoutForward(in, 1.0, rand.New(rand.NewSource(1)))
	assert.Equal(t, in.Data(), out.Data())
	assert.Equal(t, []float64{1, 1, 1}, mask.Data())
}

func TestDropoutKeepStatistics(t *testing.T) {
	const keep = 0.7
	in := tensor.Ones(tensor.Shape{20000})

	out, mask := ops.DropoutForward(in, keep, rand.New(rand.NewSource(7)))

	kept := 0
	for i, m := range mask.Data() {
		if m == 0 {
			assert.Equal(t, 0.0, out.Data()[i])
			continue
		}
		kept++
		assert.InDelta(t, 1/keep, m, 1e-12)
		assert.InDelta(t, 1/keep, out.Data()[i], 1e-12)
	}
	// Kept fraction concentrates around the keep probability.
	assert.InDelta(t, keep, float64(kept)/float64(in.NumElements()), 0.02)

	assert.Panics(t, func() { ops.DropoutForward(in, 0, nil) })
	assert.Panics(t, func() { ops.DropoutForward(in, 1.5, nil) })
}

func TestDropoutBackwardUsesMask(t *testing.T) {
	in, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{4})
	out, mask := ops.DropoutForward(in, 0.5, rand.New(rand.NewSource(3)))

	og := tensor.Ones(tensor.Shape{4})
	grads := ops.NewDropoutOp(in, mask, out).Backward(og)

	require.Len(t, grads, 1)
	assert.Equal(t, mask.Data(), grads[0].Data())
}

func TestMaskedCrossEntropyAllOnesMaskEqualsMean(t *testing.T) {
	// Uniform logits over 4 classes: every token's CE is log(4).
	logits := tensor.Zeros(tensor.Shape{2, 3, 4})
	labels, _ := tensor.IntFromSlice([]int32{0, 1, 2, 3, 0, 1}, tensor.Shape{2, 3})
	mask := tensor.Ones(tensor.Shape{2, 3})

	loss := ops.MaskedCrossEntropyForward(logits, labels, mask, false)
	assert.InDelta(t, math.Log(4), loss.Item(), 1e-12)

	// With an all-ones mask both normalizations agree.
	lossNorm := ops.MaskedCrossEntropyForward(logits, labels, mask, true)
	assert.InDelta(t, loss.Item(), lossNorm.Item(), 1e-12)
}

func TestMaskedCrossEntropyPaddingContributesNothing(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{1, 4, 3})
	// Wild logits at padded positions must not affect the loss.
	logits.Set(1000, 0, 2, 0)
	logits.Set(-1000, 0, 3, 1)
	labels, _ := tensor.IntFromSlice([]int32{0, 1, 2, 0}, tensor.Shape{1, 4})
	mask, _ := tensor.FromSlice([]float64{1, 1, 0, 0}, tensor.Shape{1, 4})

	loss := ops.MaskedCrossEntropyForward(logits, labels, mask, false)
	// Two real tokens with uniform logits over 3 classes, averaged over 4 entries.
	assert.InDelta(t, 2*math.Log(3)/4, loss.Item(), 1e-12)

	// Mask-sum normalization averages over the 2 real tokens instead.
	lossNorm := ops.MaskedCrossEntropyForward(logits, labels, mask, true)
	assert.InDelta(t, math.Log(3), lossNorm.Item(), 1e-12)
}

func TestMaskedCrossEntropyEmptyBatch(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{0, 0, 5})
	labels := tensor.NewInt(tensor.Shape{0, 0})
	mask := tensor.Zeros(tensor.Shape{0, 0})

	loss := ops.MaskedCrossEntropyForward(logits, labels, mask, false)
	assert.Equal(t, 0.0, loss.Item())
}

func TestMaskedCrossEntropyLabelOutOfRange(t *testing.T) {
	logits := tensor.Zeros(tensor.Shape{1, 1, 3})
	labels, _ := tensor.IntFromSlice([]int32{5}, tensor.Shape{1, 1})
	mask := tensor.Ones(tensor.Shape{1, 1})

	assert.Panics(t, func() { ops.MaskedCrossEntropyForward(logits, labels, mask, false) })
}
