// Package train runs the epoch loop: shuffled minibatches over the
// training split, a learning rate decayed per epoch, and entity-level
// validation after every epoch.
package train

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/convtag-ml/convtag/internal/batch"
	"github.com/convtag-ml/convtag/internal/config"
	"github.com/convtag-ml/convtag/internal/conll"
	"github.com/convtag-ml/convtag/internal/eval"
	"github.com/convtag-ml/convtag/internal/tagger"
)

// Trainer drives optimization of a tagger over a corpus.
type Trainer struct {
	model     *tagger.CNNTagger
	encoder   *batch.Encoder
	evaluator *eval.Evaluator
	cfg       config.TrainConfig
	rng       *rand.Rand
	log       zerolog.Logger
	progress  io.Writer
}

// New creates a trainer. rng drives batch shuffling and must be distinct
// from the model's dropout source only if independent streams matter to
// the caller.
func New(model *tagger.CNNTagger, encoder *batch.Encoder, evaluator *eval.Evaluator, cfg config.TrainConfig, rng *rand.Rand, log zerolog.Logger) *Trainer {
	return &Trainer{
		model:     model,
		encoder:   encoder,
		evaluator: evaluator,
		cfg:       cfg,
		rng:       rng,
		log:       log,
		progress:  os.Stderr,
	}
}

// SilenceProgress discards the progress bar output. Used by tests and
// non-interactive runs.
func (t *Trainer) SilenceProgress() {
	t.progress = io.Discard
}

// Run trains for the configured number of epochs and returns the final
// validation report.
func (t *Trainer) Run(trainSplit, validSplit conll.Split) (*eval.Report, error) {
	lr := t.cfg.LR
	var report *eval.Report

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		loss, err := t.trainEpoch(trainSplit, epoch, lr)
		if err != nil {
			return nil, err
		}

		report, err = t.evaluator.Evaluate(t.model, validSplit)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		t.log.Info().
			Int("epoch", epoch).
			Float64("lr", lr).
			Float64("loss", loss).
			Float64("valid_f1", report.Overall.F1).
			Float64("valid_precision", report.Overall.Precision).
			Float64("valid_recall", report.Overall.Recall).
			Msg("epoch complete")

		lr *= t.cfg.LRDecay
	}
	return report, nil
}

// trainEpoch runs one shuffled pass and returns the mean batch loss.
func (t *Trainer) trainEpoch(split conll.Split, epoch int, lr float64) (float64, error) {
	it := batch.NewIterator(split, t.cfg.BatchSize, true, t.rng)
	bar := progressbar.NewOptions(it.NumBatches(),
		progressbar.OptionSetWriter(t.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("epoch %d", epoch)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var totalLoss float64
	var numBatches int
	for samples := it.Next(); samples != nil; samples = it.Next() {
		b, err := t.encoder.Encode(samples)
		if err != nil {
			return 0, fmt.Errorf("failed to encode batch: %w", err)
		}
		totalLoss += t.model.TrainStep(b.TokenIDs, b.TagIDs, b.Mask, lr)
		numBatches++
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if numBatches == 0 {
		return 0, nil
	}
	return totalLoss / float64(numBatches), nil
}
