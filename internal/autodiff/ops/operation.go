// Package ops implements the differentiable operations the tagger is
// built from. Each operation performs its forward computation through an
// exported kernel function and records enough state to compute input
// gradients during the backward pass.
//
// Operations:
//   - EmbeddingOp: id -> vector lookup (scatter-add backward)
//   - Conv1DOp: 1-D convolution over the token axis with "same" padding
//   - AffineOp: per-row x@Wᵀ + b projection
//   - ReLUOp: rectified linear activation
//   - DropoutOp: inverted dropout with a stored mask
//   - MaskedCrossEntropyOp: softmax cross-entropy gated by a padding mask
package ops

import "github.com/convtag-ml/convtag/internal/tensor"

// Operation is a node recorded on the gradient tape during the forward
// pass. Backward computes gradients for the operation's inputs given the
// gradient of the loss with respect to its output.
type Operation interface {
	// Backward returns one gradient per entry of Inputs(), in order.
	// A nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.Tensor) []*tensor.Tensor

	// Inputs returns the tensors gradients should be accumulated for.
	Inputs() []*tensor.Tensor

	// Output returns the tensor produced by the forward pass.
	Output() *tensor.Tensor
}
