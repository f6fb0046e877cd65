package nn

import (
	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// ReLU applies f(x) = max(0, x) elementwise.
type ReLU struct {
	tape *autodiff.Tape
}

// NewReLU creates a ReLU activation recording on tape.
func NewReLU(tape *autodiff.Tape) *ReLU {
	return &ReLU{tape: tape}
}

// Forward applies the activation.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := ops.ReLUForward(input)
	r.tape.Record(ops.NewReLUOp(input, out))
	return out
}

// Parameters returns nil; ReLU has no trainable state.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}
