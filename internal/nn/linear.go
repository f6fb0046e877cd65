package nn

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Linear applies y = x @ Wᵀ + b over the last input dimension.
//
// Weight is [outFeatures, inFeatures] with Xavier initialization; bias
// starts at zero. Leading input dimensions are preserved, so a
// [N, T, inFeatures] activation projects per token to [N, T, outFeatures].
type Linear struct {
	InFeatures  int
	OutFeatures int

	weight *Parameter
	bias   *Parameter
	tape   *autodiff.Tape
}

// NewLinear creates a Linear layer recording on tape.
func NewLinear(inFeatures, outFeatures int, tape *autodiff.Tape) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("nn: linear needs positive dimensions, got in=%d out=%d", inFeatures, outFeatures))
	}
	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})
	return &Linear{
		InFeatures:  inFeatures,
		OutFeatures: outFeatures,
		weight:      NewParameter("linear.weight", weight),
		bias:        NewParameter("linear.bias", tensor.Zeros(tensor.Shape{outFeatures})),
		tape:        tape,
	}
}

// Forward projects input [..., InFeatures] to [..., OutFeatures].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := ops.AffineForward(input, l.weight.Tensor(), l.bias.Tensor())
	l.tape.Record(ops.NewAffineOp(input, l.weight.Tensor(), l.bias.Tensor(), out))
	return out
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// String describes the layer, e.g. Linear(in=256, out=9).
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.InFeatures, l.OutFeatures)
}
