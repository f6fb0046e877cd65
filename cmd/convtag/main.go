// Command convtag trains and evaluates a convolutional NER tagger on
// CoNLL-2003 style corpora.
//
// Usage:
//
//	convtag train [-config convtag.yaml] [-data DIR] [-epochs N] [-lr F] [-batch N] [-out model.cvtg]
//	convtag eval  -model model.cvtg [-config convtag.yaml] [-data DIR]
//
// Flags override values from the config file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/rs/zerolog"

	"github.com/convtag-ml/convtag/internal/batch"
	"github.com/convtag-ml/convtag/internal/checkpoint"
	"github.com/convtag-ml/convtag/internal/config"
	"github.com/convtag-ml/convtag/internal/conll"
	"github.com/convtag-ml/convtag/internal/eval"
	"github.com/convtag-ml/convtag/internal/optim"
	"github.com/convtag-ml/convtag/internal/tagger"
	"github.com/convtag-ml/convtag/internal/train"
	"github.com/convtag-ml/convtag/internal/vocab"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:], log)
	case "eval":
		err = runEval(os.Args[2:], log)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: convtag <train|eval> [flags]")
}

type cliFlags struct {
	cfg       *config.Config
	modelPath string
}

// parseFlags parses the shared flags, loads the config file and applies
// flag overrides on top.
func parseFlags(name string, args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./convtag.yaml if present)")
	dataDir := fs.String("data", "", "corpus directory override")
	epochs := fs.Int("epochs", 0, "epoch count override")
	lr := fs.Float64("lr", 0, "learning rate override")
	batchSize := fs.Int("batch", 0, "batch size override")
	var modelPath *string
	switch name {
	case "train":
		modelPath = fs.String("out", "model.cvtg", "checkpoint output path")
	case "eval":
		modelPath = fs.String("model", "", "checkpoint to evaluate")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}
	if *lr > 0 {
		cfg.Train.LR = *lr
	}
	if *batchSize > 0 {
		cfg.Train.BatchSize = *batchSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cliFlags{cfg: cfg, modelPath: *modelPath}, nil
}

// buildModel fits the vocabularies on the training split and constructs
// the tagger with its optimizer.
func buildModel(cfg *config.Config, ds *conll.Dataset, rng *rand.Rand) (*tagger.CNNTagger, *vocab.Vocab, *vocab.Vocab, error) {
	tokens := vocab.NewWithUnknown()
	tags := vocab.New()
	tokens.Fit(ds.Train.Tokens())
	tags.Fit(ds.Train.Tags())

	model, err := tagger.New(tagger.Config{
		VocabSize:   tokens.Len(),
		NumTags:     tags.Len(),
		EmbedDim:    cfg.Model.EmbedDim,
		HiddenDims:  cfg.Model.HiddenDims,
		KernelWidth: cfg.Model.KernelWidth,
		KeepProb:    cfg.Model.KeepProb,
	}, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	model.NormalizeLossByMask(cfg.Train.NormalizeByMask)

	switch cfg.Train.Optimizer {
	case "adam":
		model.UseOptimizer(optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.Train.LR}))
	default:
		model.UseOptimizer(optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       cfg.Train.LR,
			Momentum: cfg.Train.Momentum,
		}))
	}
	return model, tokens, tags, nil
}

func runTrain(args []string, log zerolog.Logger) error {
	flags, err := parseFlags("train", args)
	if err != nil {
		return err
	}
	cfg := flags.cfg

	ds, err := conll.LoadDataset(cfg.Data.Dir)
	if err != nil {
		return err
	}
	log.Info().
		Int("train", len(ds.Train)).
		Int("valid", len(ds.Valid)).
		Int("test", len(ds.Test)).
		Msg("corpus loaded")

	rng := rand.New(rand.NewSource(cfg.Train.Seed))
	model, tokens, tags, err := buildModel(cfg, ds, rng)
	if err != nil {
		return err
	}
	encoder := batch.NewEncoder(tokens, tags)
	evaluator := eval.NewEvaluator(encoder, tags, cfg.Train.BatchSize)

	trainer := train.New(model, encoder, evaluator, cfg.Train, rng, log)
	report, err := trainer.Run(ds.Train, ds.Valid)
	if err != nil {
		return err
	}
	fmt.Print(report.String())

	testReport, err := evaluator.Evaluate(model, ds.Test)
	if err != nil {
		return err
	}
	log.Info().Float64("test_f1", testReport.Overall.F1).Msg("test split scored")
	fmt.Print(testReport.String())

	err = checkpoint.Save(flags.modelPath, model, checkpoint.Snapshot{
		Tokens: tokens.Items(),
		Tags:   tags.Items(),
		Epoch:  cfg.Train.Epochs,
	})
	if err != nil {
		return err
	}
	log.Info().Str("path", flags.modelPath).Msg("checkpoint saved")
	return nil
}

func runEval(args []string, log zerolog.Logger) error {
	flags, err := parseFlags("eval", args)
	if err != nil {
		return err
	}
	if flags.modelPath == "" {
		return errors.New("eval: -model is required")
	}
	cfg := flags.cfg

	ds, err := conll.LoadDataset(cfg.Data.Dir)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Train.Seed))
	model, snap, err := checkpoint.Load(flags.modelPath, rng)
	if err != nil {
		return err
	}
	log.Info().Str("path", flags.modelPath).Int("epoch", snap.Epoch).Msg("checkpoint loaded")

	tokens := vocab.FromItems(snap.Tokens)
	tags := vocab.FromItems(snap.Tags)
	encoder := batch.NewEncoder(tokens, tags)
	evaluator := eval.NewEvaluator(encoder, tags, cfg.Train.BatchSize)

	report, err := evaluator.Evaluate(model, ds.Test)
	if err != nil {
		return err
	}
	fmt.Print(report.String())
	return nil
}
