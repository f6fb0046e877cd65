package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Model.EmbedDim)
	assert.Equal(t, []int{128, 128}, cfg.Model.HiddenDims)
	assert.Equal(t, 3, cfg.Model.KernelWidth)
	assert.Equal(t, 0.5, cfg.Model.KeepProb)
	assert.Equal(t, 10, cfg.Train.Epochs)
	assert.Equal(t, 32, cfg.Train.BatchSize)
	assert.Equal(t, "sgd", cfg.Train.Optimizer)
	assert.False(t, cfg.Train.NormalizeByMask)
}

func TestLoadFile(t *testing.T) {
	yaml := `
data:
  dir: /tmp/corpus
model:
  embedDim: 16
  hiddenDims: [32]
train:
  epochs: 2
  lr: 0.05
  optimizer: adam
`
	path := filepath.Join(t.TempDir(), "convtag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/corpus", cfg.Data.Dir)
	assert.Equal(t, 16, cfg.Model.EmbedDim)
	assert.Equal(t, []int{32}, cfg.Model.HiddenDims)
	assert.Equal(t, 2, cfg.Train.Epochs)
	assert.Equal(t, 0.05, cfg.Train.LR)
	assert.Equal(t, "adam", cfg.Train.Optimizer)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Model.KernelWidth)
	assert.Equal(t, 32, cfg.Train.BatchSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Train.Epochs = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Train.LRDecay = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Train.Optimizer = "rmsprop"
	assert.Error(t, cfg.Validate())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convtag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("train: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
