package batch

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convtag-ml/convtag/internal/conll"
	"github.com/convtag-ml/convtag/internal/tensor"
	"github.com/convtag-ml/convtag/internal/vocab"
)

func TestPad(t *testing.T) {
	ids, mask := Pad([][]int32{
		{7, 8},
		{3, 4, 5, 6, 9},
	})

	assert.Equal(t, tensor.Shape{2, 5}, ids.Shape())
	assert.Equal(t, tensor.Shape{2, 5}, mask.Shape())

	assert.Equal(t, []int32{7, 8, 0, 0, 0, 3, 4, 5, 6, 9}, ids.Data())
	assert.Equal(t, []float64{1, 1, 0, 0, 0, 1, 1, 1, 1, 1}, mask.Data())
}

func TestPadEmpty(t *testing.T) {
	ids, mask := Pad(nil)
	assert.Equal(t, 0, ids.NumElements())
	assert.Equal(t, 0, mask.NumElements())
}

func makeSplit(n int) conll.Split {
	split := make(conll.Split, n)
	for i := range split {
		split[i] = conll.Sample{Tokens: []string{"w"}, Tags: []string{"O"}}
	}
	return split
}

func TestIteratorBatchSizes(t *testing.T) {
	it := NewIterator(makeSplit(10), 3, false, nil)

	var sizes []int
	for b := it.Next(); b != nil; b = it.Next() {
		sizes = append(sizes, len(b))
	}
	assert.Equal(t, []int{3, 3, 3, 1}, sizes)
	assert.Equal(t, 4, it.NumBatches())
}

func TestIteratorPreservesOrderUnshuffled(t *testing.T) {
	split := conll.Split{
		{Tokens: []string{"a"}, Tags: []string{"O"}},
		{Tokens: []string{"b"}, Tags: []string{"O"}},
		{Tokens: []string{"c"}, Tags: []string{"O"}},
	}
	it := NewIterator(split, 2, false, nil)

	first := it.Next()
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Tokens[0])
	assert.Equal(t, "b", first[1].Tokens[0])

	second := it.Next()
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].Tokens[0])
	assert.Nil(t, it.Next())
}

func TestIteratorShuffleCoversAllSamples(t *testing.T) {
	split := make(conll.Split, 20)
	for i := range split {
		split[i] = conll.Sample{Tokens: []string{string(rune('a' + i))}, Tags: []string{"O"}}
	}
	it := NewIterator(split, 7, true, rand.New(rand.NewSource(1)))

	var seen []string
	for b := it.Next(); b != nil; b = it.Next() {
		for _, s := range b {
			seen = append(seen, s.Tokens[0])
		}
	}
	require.Len(t, seen, 20)
	sort.Strings(seen)
	for i, tok := range seen {
		assert.Equal(t, string(rune('a'+i)), tok)
	}

	// The split itself is untouched.
	assert.Equal(t, "a", split[0].Tokens[0])
}

func TestIteratorFreshPermutationPerPass(t *testing.T) {
	split := make(conll.Split, 50)
	for i := range split {
		split[i] = conll.Sample{Tokens: []string{string(rune(i))}, Tags: []string{"O"}}
	}
	it := NewIterator(split, 50, true, rand.New(rand.NewSource(7)))

	first := it.Next()
	it.Reset()
	second := it.Next()

	same := true
	for i := range first {
		if first[i].Tokens[0] != second[i].Tokens[0] {
			same = false
			break
		}
	}
	assert.False(t, same, "two passes drew identical permutations")
}

func TestEncoder(t *testing.T) {
	tokens := vocab.NewWithUnknown()
	tags := vocab.New()
	tokens.Fit([][]string{{"Alice", "ran"}})
	tags.Fit([][]string{{"B-PER", "O"}})

	enc := NewEncoder(tokens, tags)
	b, err := enc.Encode([]conll.Sample{
		{Tokens: []string{"Alice", "ran"}, Tags: []string{"B-PER", "O"}},
		{Tokens: []string{"Alice"}, Tags: []string{"B-PER"}},
	})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 2}, b.TokenIDs.Shape())
	assert.Equal(t, tensor.Shape{2, 2}, b.TagIDs.Shape())
	assert.Equal(t, []float64{1, 1, 1, 0}, b.Mask.Data())
	assert.Equal(t, []int{2, 1}, b.Lengths)
	assert.Equal(t, 2, b.Size())
}

func TestEncoderUnknownToken(t *testing.T) {
	tokens := vocab.NewWithUnknown()
	tags := vocab.New()
	tokens.Fit([][]string{{"known"}})
	tags.Fit([][]string{{"O"}})

	enc := NewEncoder(tokens, tags)
	b, err := enc.Encode([]conll.Sample{
		{Tokens: []string{"unseen"}, Tags: []string{"O"}},
	})
	require.NoError(t, err)

	unkID, err := tokens.ID(vocab.Unknown)
	require.NoError(t, err)
	assert.Equal(t, unkID, b.TokenIDs.At(0, 0))
}
