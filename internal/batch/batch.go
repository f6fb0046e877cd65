// Package batch turns variable-length sentences into fixed-shape padded
// minibatches with validity masks.
package batch

import (
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Batch is one padded minibatch ready for the model.
type Batch struct {
	TokenIDs *tensor.IntTensor // [N, T]
	TagIDs   *tensor.IntTensor // [N, T]
	Mask     *tensor.Tensor    // [N, T], 1.0 for real tokens, 0.0 for padding
	Lengths  []int             // original sentence lengths
}

// Size returns the number of sentences in the batch.
func (b *Batch) Size() int {
	return len(b.Lengths)
}

// Pad right-pads the sequences with zeros to the batch max length and
// builds the matching mask. Zero sequences yield empty [0, 0] tensors.
func Pad(seqs [][]int32) (*tensor.IntTensor, *tensor.Tensor) {
	maxLen := 0
	for _, seq := range seqs {
		if len(seq) > maxLen {
			maxLen = len(seq)
		}
	}

	ids := tensor.NewInt(tensor.Shape{len(seqs), maxLen})
	mask := tensor.Zeros(tensor.Shape{len(seqs), maxLen})
	for i, seq := range seqs {
		for j, id := range seq {
			ids.Set(id, i, j)
			mask.Set(1, i, j)
		}
	}
	return ids, mask
}
