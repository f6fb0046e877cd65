// Package tagger implements a convolutional sequence tagger.
//
// The model embeds token ids, applies dropout during training, runs a
// stack of same-padded 1D convolutions with ReLU, and projects each
// token to tag logits. Sentence length is preserved end to end so every
// token receives a prediction.
package tagger

import (
	"fmt"
	"math/rand"

	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/nn"
	"github.com/convtag-ml/convtag/internal/optim"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Config holds the tagger's hyperparameters.
type Config struct {
	VocabSize   int
	NumTags     int
	EmbedDim    int
	HiddenDims  []int
	KernelWidth int
	KeepProb    float64
}

// Validate checks the configuration for nonsensical values.
func (c Config) Validate() error {
	if c.VocabSize < 1 {
		return fmt.Errorf("tagger: vocab size must be positive, got %d", c.VocabSize)
	}
	if c.NumTags < 1 {
		return fmt.Errorf("tagger: number of tags must be positive, got %d", c.NumTags)
	}
	if c.EmbedDim < 1 {
		return fmt.Errorf("tagger: embedding dim must be positive, got %d", c.EmbedDim)
	}
	if len(c.HiddenDims) == 0 {
		return fmt.Errorf("tagger: at least one hidden layer is required")
	}
	if c.KernelWidth < 1 {
		return fmt.Errorf("tagger: kernel width must be positive, got %d", c.KernelWidth)
	}
	if c.KeepProb <= 0 || c.KeepProb > 1 {
		return fmt.Errorf("tagger: keep probability must be in (0, 1], got %g", c.KeepProb)
	}
	return nil
}

// CNNTagger is the convolutional tagger model.
type CNNTagger struct {
	config    Config
	tape      *autodiff.Tape
	embedding *nn.Embedding
	dropout   *nn.Dropout
	convs     []*nn.Conv1D
	relu      *nn.ReLU
	proj      *nn.Linear
	loss      *nn.MaskedCrossEntropyLoss
	optimizer optim.Optimizer
	params    []*nn.Parameter
}

// New builds a tagger from the config. rng seeds dropout masks; pass a
// seeded source for reproducible training.
func New(config Config, rng *rand.Rand) (*CNNTagger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tape := autodiff.NewTape()
	t := &CNNTagger{
		config:    config,
		tape:      tape,
		embedding: nn.NewEmbedding(config.VocabSize, config.EmbedDim, tape),
		dropout:   nn.NewDropout(config.KeepProb, rng, tape),
		relu:      nn.NewReLU(tape),
		loss:      nn.NewMaskedCrossEntropyLoss(tape),
	}

	inDim := config.EmbedDim
	for _, outDim := range config.HiddenDims {
		t.convs = append(t.convs, nn.NewConv1D(inDim, outDim, config.KernelWidth, tape))
		inDim = outDim
	}
	t.proj = nn.NewLinear(inDim, config.NumTags, tape)

	t.params = append(t.params, t.embedding.Parameters()...)
	for _, conv := range t.convs {
		t.params = append(t.params, conv.Parameters()...)
	}
	t.params = append(t.params, t.proj.Parameters()...)
	return t, nil
}

// UseOptimizer attaches the optimizer that TrainStep drives. It must be
// built over this model's Parameters.
func (t *CNNTagger) UseOptimizer(opt optim.Optimizer) {
	t.optimizer = opt
}

// Parameters returns every trainable parameter of the model.
func (t *CNNTagger) Parameters() []*nn.Parameter {
	return t.params
}

// Config returns the hyperparameters the model was built with.
func (t *CNNTagger) Config() Config {
	return t.config
}

// NormalizeLossByMask switches the loss denominator from all logit rows
// to the number of unmasked tokens.
func (t *CNNTagger) NormalizeLossByMask(on bool) {
	t.loss.NormalizeByMask = on
}

// Forward computes tag logits of shape [N, T, numTags]. Dropout is only
// applied when training is true.
func (t *CNNTagger) Forward(tokenIDs *tensor.IntTensor, training bool) *tensor.Tensor {
	h := t.embedding.Forward(tokenIDs)
	h = t.dropout.Forward(h, training)
	for _, conv := range t.convs {
		h = t.relu.Forward(conv.Forward(h))
	}
	return t.proj.Forward(h)
}

// Predict returns the argmax tag id per token with gradient recording
// paused. Padded positions carry tag id 0.
func (t *CNNTagger) Predict(tokenIDs *tensor.IntTensor, mask *tensor.Tensor) *tensor.IntTensor {
	wasRecording := t.tape.IsRecording()
	t.tape.StopRecording()
	logits := t.Forward(tokenIDs, false)
	if wasRecording {
		t.tape.StartRecording()
	}

	shape := tokenIDs.Shape()
	n, seqLen := shape[0], shape[1]
	preds := tensor.NewInt(tensor.Shape{n, seqLen})
	data := logits.Data()
	for i := 0; i < n; i++ {
		for j := 0; j < seqLen; j++ {
			if mask != nil && mask.At(i, j) == 0 {
				continue
			}
			row := data[(i*seqLen+j)*t.config.NumTags : (i*seqLen+j+1)*t.config.NumTags]
			preds.Set(int32(tensor.Argmax(row)), i, j)
		}
	}
	return preds
}

// TrainStep runs one optimization step at the given learning rate and
// returns the batch loss. An optimizer must be attached first.
func (t *CNNTagger) TrainStep(tokenIDs, tagIDs *tensor.IntTensor, mask *tensor.Tensor, lr float64) float64 {
	if t.optimizer == nil {
		panic("tagger: no optimizer attached")
	}

	t.tape.Clear()
	t.tape.StartRecording()
	logits := t.Forward(tokenIDs, true)
	loss := t.loss.Forward(logits, tagIDs, mask)
	t.tape.StopRecording()

	grads := t.tape.Backward(tensor.Ones(tensor.Shape{1}))
	t.optimizer.SetLR(lr)
	t.optimizer.Step(grads)
	t.tape.Clear()

	return loss.Item()
}
