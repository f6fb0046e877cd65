package ops

import (
	"fmt"
	"math/rand"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// DropoutForward applies inverted dropout: each element is kept with
// probability keepProb and scaled by 1/keepProb so the expected value of
// the activation is unchanged. Returns the output and the applied mask;
// the mask holds 1/keepProb at kept positions and 0 at dropped ones.
//
// keepProb must be in (0, 1]. With keepProb == 1 the input passes through
// and the mask is all ones. rng may be nil to use the global source.
func DropoutForward(input *tensor.Tensor, keepProb float64, rng *rand.Rand) (output, mask *tensor.Tensor) {
	if keepProb <= 0 || keepProb > 1 {
		panic(fmt.Sprintf("ops: dropout keep probability %v outside (0, 1]", keepProb))
	}

	mask = tensor.New(input.Shape())
	output = tensor.New(input.Shape())

	in := input.Data()
	mv := mask.Data()
	ov := output.Data()
	scale := 1 / keepProb
	for i := range in {
		if sample(rng) < keepProb {
			mv[i] = scale
			ov[i] = in[i] * scale
		}
	}
	return output, mask
}

// DropoutOp records a dropout application for the backward pass.
// The same mask that scaled the forward activations gates the gradient.
type DropoutOp struct {
	input  *tensor.Tensor
	mask   *tensor.Tensor
	output *tensor.Tensor
}

// NewDropoutOp creates a DropoutOp.
func NewDropoutOp(input, mask, output *tensor.Tensor) *DropoutOp {
	return &DropoutOp{input: input, mask: mask, output: output}
}

// Inputs returns [input].
func (op *DropoutOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input}
}

// Output returns the masked tensor.
func (op *DropoutOp) Output() *tensor.Tensor {
	return op.output
}

// Backward multiplies the output gradient by the stored mask.
func (op *DropoutOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.input.Shape())
	mv := op.mask.Data()
	og := outputGrad.Data()
	g := grad.Data()
	for i := range g {
		g[i] = og[i] * mv[i]
	}
	return []*tensor.Tensor{grad}
}

func sample(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	//nolint:gosec // math/rand is appropriate for dropout sampling
	return rand.Float64()
}
