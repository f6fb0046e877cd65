package ops

import "github.com/convtag-ml/convtag/internal/tensor"

// ReLUForward computes max(0, x) elementwise.
func ReLUForward(input *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(input.Shape())
	in := input.Data()
	ov := out.Data()
	for i, v := range in {
		if v > 0 {
			ov[i] = v
		}
	}
	return out
}

// ReLUOp records a ReLU activation for the backward pass.
//
// d ReLU(x)/dx is 1 where x > 0 and 0 elsewhere.
type ReLUOp struct {
	input  *tensor.Tensor
	output *tensor.Tensor
}

// NewReLUOp creates a ReLUOp.
func NewReLUOp(input, output *tensor.Tensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Inputs returns [input].
func (op *ReLUOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input}
}

// Output returns the activated tensor.
func (op *ReLUOp) Output() *tensor.Tensor {
	return op.output
}

// Backward gates the output gradient by the activation mask.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	grad := tensor.New(op.input.Shape())
	in := op.input.Data()
	og := outputGrad.Data()
	g := grad.Data()
	for i, v := range in {
		if v > 0 {
			g[i] = og[i]
		}
	}
	return []*tensor.Tensor{grad}
}
