package batch

import (
	"math/rand"

	"github.com/convtag-ml/convtag/internal/conll"
)

// Iterator yields batches of samples from a split. Each call to Next
// consumes one batch; Reset starts a new pass. With shuffling enabled a
// fresh permutation is drawn per pass without mutating the split, and
// every sample is visited exactly once per pass.
type Iterator struct {
	split     conll.Split
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	order     []int
	pos       int
}

// NewIterator creates an iterator over split. rng is only consulted when
// shuffle is true; pass nil to disable shuffling regardless.
func NewIterator(split conll.Split, batchSize int, shuffle bool, rng *rand.Rand) *Iterator {
	if batchSize < 1 {
		panic("batch: batch size must be at least 1")
	}
	it := &Iterator{
		split:     split,
		batchSize: batchSize,
		shuffle:   shuffle && rng != nil,
		rng:       rng,
	}
	it.Reset()
	return it
}

// Reset begins a new pass, drawing a fresh permutation when shuffling.
func (it *Iterator) Reset() {
	if it.shuffle {
		it.order = it.rng.Perm(len(it.split))
	} else {
		it.order = it.order[:0]
		for i := range it.split {
			it.order = append(it.order, i)
		}
	}
	it.pos = 0
}

// Next returns the next batch of samples, or nil when the pass is done.
// The last batch of a pass may be short.
func (it *Iterator) Next() []conll.Sample {
	if it.pos >= len(it.order) {
		return nil
	}
	end := it.pos + it.batchSize
	if end > len(it.order) {
		end = len(it.order)
	}
	samples := make([]conll.Sample, 0, end-it.pos)
	for _, idx := range it.order[it.pos:end] {
		samples = append(samples, it.split[idx])
	}
	it.pos = end
	return samples
}

// NumBatches returns the number of batches in one full pass.
func (it *Iterator) NumBatches() int {
	return (len(it.split) + it.batchSize - 1) / it.batchSize
}
