package ops

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// EmbeddingForward gathers rows of weight for every id.
//
// weight is [numEmbed, embedDim]; ids may have any shape. The output has
// the ids' shape with embedDim appended: [N, T] ids produce [N, T, embedDim].
//
// Out-of-range ids are a caller contract violation and panic; the
// vocabulary layer never emits them.
func EmbeddingForward(weight *tensor.Tensor, ids *tensor.IntTensor) *tensor.Tensor {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		panic(fmt.Sprintf("ops: embedding weight must be 2D, got %v", wShape))
	}
	numEmbed, embedDim := wShape[0], wShape[1]

	outShape := append(ids.Shape().Clone(), embedDim)
	out := tensor.New(outShape)

	wData := weight.Data()
	outData := out.Data()
	for i, id := range ids.Data() {
		idx := int(id)
		if idx < 0 || idx >= numEmbed {
			panic(fmt.Sprintf("ops: embedding id %d out of range [0, %d)", idx, numEmbed))
		}
		copy(outData[i*embedDim:(i+1)*embedDim], wData[idx*embedDim:(idx+1)*embedDim])
	}
	return out
}

// EmbeddingOp records an embedding lookup for the backward pass.
//
// The gradient is a scatter-add: every output row's gradient accumulates
// into the weight row its id selected, so repeated ids sum.
type EmbeddingOp struct {
	weight *tensor.Tensor
	ids    *tensor.IntTensor
	output *tensor.Tensor
}

// NewEmbeddingOp creates an EmbeddingOp.
func NewEmbeddingOp(weight *tensor.Tensor, ids *tensor.IntTensor, output *tensor.Tensor) *EmbeddingOp {
	return &EmbeddingOp{weight: weight, ids: ids, output: output}
}

// Inputs returns [weight]; ids are integers and carry no gradient.
func (op *EmbeddingOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.weight}
}

// Output returns the gathered embeddings.
func (op *EmbeddingOp) Output() *tensor.Tensor {
	return op.output
}

// Backward scatter-adds the output gradient into the weight gradient.
func (op *EmbeddingOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	embedDim := op.weight.Shape()[1]
	gradWeight := tensor.Zeros(op.weight.Shape())

	gw := gradWeight.Data()
	og := outputGrad.Data()
	for i, id := range op.ids.Data() {
		idx := int(id)
		dst := gw[idx*embedDim : (idx+1)*embedDim]
		src := og[i*embedDim : (i+1)*embedDim]
		for j := range dst {
			dst[j] += src[j]
		}
	}
	return []*tensor.Tensor{gradWeight}
}
