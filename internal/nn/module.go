// Package nn provides the neural-network building blocks of the tagger:
//   - Parameter: a named trainable tensor
//   - Embedding: token id -> dense vector lookup
//   - Conv1D: same-padded convolution over the token axis
//   - Linear: per-token affine projection
//   - ReLU, Dropout: pointwise activation and regularization
//   - MaskedCrossEntropyLoss: padding-aware training loss
//
// Layers record their operations on a gradient tape during the forward
// pass; the tape computes parameter gradients for the optimizer. Shape
// violations are programming errors and panic.
package nn

// Module is the base interface for network components.
type Module interface {
	// Parameters returns all trainable parameters of this module,
	// including those of nested modules. Modules without trainable
	// state return nil.
	Parameters() []*Parameter
}

var (
	_ Module = (*Embedding)(nil)
	_ Module = (*Conv1D)(nil)
	_ Module = (*Linear)(nil)
	_ Module = (*ReLU)(nil)
	_ Module = (*Dropout)(nil)
	_ Module = (*MaskedCrossEntropyLoss)(nil)
)
