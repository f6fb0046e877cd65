package nn

import (
	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// MaskedCrossEntropyLoss computes per-token softmax cross-entropy
// against integer tag ids, gated by the padding mask, and reduces to a
// scalar.
//
// By contract the sum of masked per-token losses is divided by the total
// number of [batch, token] entries, padded positions included. Batches
// mixing short and long sentences therefore report a systematically
// smaller loss. Setting NormalizeByMask divides by the number of real
// tokens (the mask sum) instead.
type MaskedCrossEntropyLoss struct {
	// NormalizeByMask switches the denominator from all entries to the
	// count of real tokens.
	NormalizeByMask bool

	tape *autodiff.Tape
}

// NewMaskedCrossEntropyLoss creates the loss recording on tape.
func NewMaskedCrossEntropyLoss(tape *autodiff.Tape) *MaskedCrossEntropyLoss {
	return &MaskedCrossEntropyLoss{tape: tape}
}

// Forward computes the scalar loss.
//
// logits is [N, T, numTags], tagIDs [N, T], mask [N, T] with 1.0 at real
// tokens and 0.0 at padding. An empty batch yields zero loss.
func (m *MaskedCrossEntropyLoss) Forward(logits *tensor.Tensor, tagIDs *tensor.IntTensor, mask *tensor.Tensor) *tensor.Tensor {
	loss := ops.MaskedCrossEntropyForward(logits, tagIDs, mask, m.NormalizeByMask)
	m.tape.Record(ops.NewMaskedCrossEntropyOp(logits, tagIDs, mask, loss, m.NormalizeByMask))
	return loss
}

// Parameters returns nil; loss functions have no trainable state.
func (m *MaskedCrossEntropyLoss) Parameters() []*Parameter {
	return nil
}
