package batch

import (
	"fmt"

	"github.com/convtag-ml/convtag/internal/conll"
	"github.com/convtag-ml/convtag/internal/vocab"
)

// Encoder maps samples through fitted token and tag vocabularies into
// padded batches.
type Encoder struct {
	tokens *vocab.Vocab
	tags   *vocab.Vocab
}

// NewEncoder creates an encoder over fitted vocabularies.
func NewEncoder(tokens, tags *vocab.Vocab) *Encoder {
	return &Encoder{tokens: tokens, tags: tags}
}

// Encode pads the samples into one batch.
func (e *Encoder) Encode(samples []conll.Sample) (*Batch, error) {
	tokenSeqs := make([][]string, len(samples))
	tagSeqs := make([][]string, len(samples))
	lengths := make([]int, len(samples))
	for i, s := range samples {
		tokenSeqs[i] = s.Tokens
		tagSeqs[i] = s.Tags
		lengths[i] = s.Len()
	}

	tokenIDs, err := e.tokens.Encode(tokenSeqs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tokens: %w", err)
	}
	tagIDs, err := e.tags.Encode(tagSeqs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	ids, mask := Pad(tokenIDs)
	tags, _ := Pad(tagIDs)
	return &Batch{
		TokenIDs: ids,
		TagIDs:   tags,
		Mask:     mask,
		Lengths:  lengths,
	}, nil
}
