package nn

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Conv1D is a 1-D convolution over the token axis with "same" padding.
//
// The kernel is [outChannels, kernelWidth, inChannels] and the bias
// [outChannels]. Output length always equals input length; the loss and
// mask alignment downstream depend on it. Weights use Xavier
// initialization over fanIn = inChannels*kernelWidth and
// fanOut = outChannels*kernelWidth.
type Conv1D struct {
	InChannels  int
	OutChannels int
	KernelWidth int

	weight *Parameter
	bias   *Parameter
	tape   *autodiff.Tape
}

// NewConv1D creates a Conv1D layer recording on tape.
func NewConv1D(inChannels, outChannels, kernelWidth int, tape *autodiff.Tape) *Conv1D {
	if inChannels <= 0 || outChannels <= 0 || kernelWidth <= 0 {
		panic(fmt.Sprintf("nn: conv1d needs positive dimensions, got in=%d out=%d k=%d",
			inChannels, outChannels, kernelWidth))
	}
	weight := Xavier(
		inChannels*kernelWidth,
		outChannels*kernelWidth,
		tensor.Shape{outChannels, kernelWidth, inChannels},
	)
	return &Conv1D{
		InChannels:  inChannels,
		OutChannels: outChannels,
		KernelWidth: kernelWidth,
		weight:      NewParameter("conv1d.weight", weight),
		bias:        NewParameter("conv1d.bias", tensor.Zeros(tensor.Shape{outChannels})),
		tape:        tape,
	}
}

// Forward convolves a [N, T, InChannels] activation to [N, T, OutChannels].
func (c *Conv1D) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := ops.Conv1DForward(input, c.weight.Tensor(), c.bias.Tensor())
	c.tape.Record(ops.NewConv1DOp(input, c.weight.Tensor(), c.bias.Tensor(), out))
	return out
}

// Parameters returns [weight, bias].
func (c *Conv1D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// String describes the layer, e.g. Conv1D(in=128, out=256, k=3).
func (c *Conv1D) String() string {
	return fmt.Sprintf("Conv1D(in=%d, out=%d, k=%d)", c.InChannels, c.OutChannels, c.KernelWidth)
}
