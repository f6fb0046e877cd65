package nn

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Embedding maps integer token ids to dense trainable vectors.
//
// The weight matrix is [numEmbed, embedDim], initialized from
// N(0, 1/embedDim). Ids outside [0, numEmbed) are a caller contract
// violation; the vocabulary never emits them.
type Embedding struct {
	Weight   *Parameter
	NumEmbed int
	EmbedDim int
	tape     *autodiff.Tape
}

// NewEmbedding creates an Embedding layer recording on tape.
func NewEmbedding(numEmbed, embedDim int, tape *autodiff.Tape) *Embedding {
	if numEmbed <= 0 || embedDim <= 0 {
		panic(fmt.Sprintf("nn: embedding needs positive dimensions, got %d x %d", numEmbed, embedDim))
	}
	weight := Normal(tensor.Shape{numEmbed, embedDim}, 1/float64(embedDim))
	return &Embedding{
		Weight:   NewParameter("embedding.weight", weight),
		NumEmbed: numEmbed,
		EmbedDim: embedDim,
		tape:     tape,
	}
}

// Forward gathers embeddings for a batch of id sequences.
//
// ids is [N, T]; the result is [N, T, EmbedDim].
func (e *Embedding) Forward(ids *tensor.IntTensor) *tensor.Tensor {
	out := ops.EmbeddingForward(e.Weight.Tensor(), ids)
	e.tape.Record(ops.NewEmbeddingOp(e.Weight.Tensor(), ids, out))
	return out
}

// Parameters returns [weight].
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.Weight}
}
