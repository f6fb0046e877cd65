package ops

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// AffineForward computes y = x @ Wᵀ + b over the last input dimension.
//
// Shapes:
//   - input:  [..., inFeatures], any number of leading dimensions
//   - weight: [outFeatures, inFeatures]
//   - bias:   [outFeatures]
//   - output: [..., outFeatures]
//
// Leading dimensions are flattened into rows, so a [N, T, inFeatures]
// activation becomes a per-token projection to [N, T, outFeatures].
func AffineForward(input, weight, bias *tensor.Tensor) *tensor.Tensor {
	rows, inF := affineDims(input, weight)
	outF := weight.Shape()[0]
	if bias.NumElements() != outF {
		panic(fmt.Sprintf("ops: affine bias %v incompatible with %d output features", bias.Shape(), outF))
	}

	outShape := input.Shape().Clone()
	outShape[len(outShape)-1] = outF
	out := tensor.New(outShape)

	in := input.Data()
	w := weight.Data()
	b := bias.Data()
	ov := out.Data()
	for m := 0; m < rows; m++ {
		inRow := in[m*inF : (m+1)*inF]
		outRow := ov[m*outF : (m+1)*outF]
		for o := 0; o < outF; o++ {
			outRow[o] = b[o] + tensor.Dot(inRow, w[o*inF:(o+1)*inF])
		}
	}
	return out
}

// AffineOp records an affine projection for the backward pass.
type AffineOp struct {
	input  *tensor.Tensor
	weight *tensor.Tensor
	bias   *tensor.Tensor
	output *tensor.Tensor
}

// NewAffineOp creates an AffineOp.
func NewAffineOp(input, weight, bias, output *tensor.Tensor) *AffineOp {
	return &AffineOp{input: input, weight: weight, bias: bias, output: output}
}

// Inputs returns [input, weight, bias].
func (op *AffineOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input, op.weight, op.bias}
}

// Output returns the projected tensor.
func (op *AffineOp) Output() *tensor.Tensor {
	return op.output
}

// Backward computes the matmul gradients:
//
//	d input  = g @ W
//	d weight = gᵀ @ input
//	d bias   = column sums of g
func (op *AffineOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	rows, inF := affineDims(op.input, op.weight)
	outF := op.weight.Shape()[0]

	gradInput := tensor.Zeros(op.input.Shape())
	gradWeight := tensor.Zeros(op.weight.Shape())
	gradBias := tensor.Zeros(op.bias.Shape())

	in := op.input.Data()
	w := op.weight.Data()
	og := outputGrad.Data()
	gi := gradInput.Data()
	gw := gradWeight.Data()
	gb := gradBias.Data()

	for m := 0; m < rows; m++ {
		inRow := in[m*inF : (m+1)*inF]
		giRow := gi[m*inF : (m+1)*inF]
		ogRow := og[m*outF : (m+1)*outF]
		for o := 0; o < outF; o++ {
			g := ogRow[o]
			if g == 0 {
				continue
			}
			gb[o] += g
			floats.AddScaled(giRow, g, w[o*inF:(o+1)*inF])
			floats.AddScaled(gw[o*inF:(o+1)*inF], g, inRow)
		}
	}
	return []*tensor.Tensor{gradInput, gradWeight, gradBias}
}

// affineDims validates shapes and returns the flattened row count and
// input feature width.
func affineDims(input, weight *tensor.Tensor) (rows, inF int) {
	inShape := input.Shape()
	wShape := weight.Shape()
	if len(inShape) < 1 || len(wShape) != 2 {
		panic(fmt.Sprintf("ops: affine expects input [..., in] and weight [out, in], got %v and %v", inShape, wShape))
	}
	inF = inShape[len(inShape)-1]
	if wShape[1] != inF {
		panic(fmt.Sprintf("ops: affine weight %v incompatible with input %v", wShape, inShape))
	}
	return input.NumElements() / inF, inF
}
