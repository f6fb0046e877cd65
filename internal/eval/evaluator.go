package eval

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/batch"
	"github.com/convtag-ml/convtag/internal/conll"
	"github.com/convtag-ml/convtag/internal/tensor"
	"github.com/convtag-ml/convtag/internal/vocab"
)

// Predictor produces argmax tag ids for a padded token batch.
type Predictor interface {
	Predict(tokenIDs *tensor.IntTensor, mask *tensor.Tensor) *tensor.IntTensor
}

// Evaluator scores a model against a tagged split.
type Evaluator struct {
	encoder   *batch.Encoder
	tags      *vocab.Vocab
	batchSize int
}

// NewEvaluator creates an evaluator. The tag vocab decodes predicted ids
// back to tag strings.
func NewEvaluator(encoder *batch.Encoder, tags *vocab.Vocab, batchSize int) *Evaluator {
	return &Evaluator{encoder: encoder, tags: tags, batchSize: batchSize}
}

// Evaluate runs the model over every sentence in the split and returns
// entity-level metrics. Predicted rows are truncated to each sentence's
// true length before scoring.
func (e *Evaluator) Evaluate(model Predictor, split conll.Split) (*Report, error) {
	scorer := NewScorer()

	it := batch.NewIterator(split, e.batchSize, false, nil)
	for samples := it.Next(); samples != nil; samples = it.Next() {
		b, err := e.encoder.Encode(samples)
		if err != nil {
			return nil, err
		}

		preds := model.Predict(b.TokenIDs, b.Mask)
		for i, sample := range samples {
			ids := make([][]int32, 1)
			ids[0] = make([]int32, sample.Len())
			for j := 0; j < sample.Len(); j++ {
				ids[0][j] = preds.At(i, j)
			}
			decoded, err := e.tags.Decode(ids)
			if err != nil {
				return nil, fmt.Errorf("failed to decode predictions: %w", err)
			}
			if err := scorer.Add(sample.Tags, decoded[0]); err != nil {
				return nil, err
			}
		}
	}
	return scorer.Report(), nil
}
