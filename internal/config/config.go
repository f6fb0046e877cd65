// Package config loads training hyperparameters from a YAML file, with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores the full training configuration. Values are read by
// viper from a config file or environment variables.
type Config struct {
	Data  DataConfig  `mapstructure:"data"`
	Model ModelConfig `mapstructure:"model"`
	Train TrainConfig `mapstructure:"train"`
}

// DataConfig locates the corpus on disk.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// ModelConfig stores the tagger architecture.
type ModelConfig struct {
	EmbedDim    int     `mapstructure:"embedDim"`
	HiddenDims  []int   `mapstructure:"hiddenDims"`
	KernelWidth int     `mapstructure:"kernelWidth"`
	KeepProb    float64 `mapstructure:"keepProb"`
}

// TrainConfig stores the optimization schedule.
type TrainConfig struct {
	Epochs          int     `mapstructure:"epochs"`
	BatchSize       int     `mapstructure:"batchSize"`
	LR              float64 `mapstructure:"lr"`
	LRDecay         float64 `mapstructure:"lrDecay"`
	Momentum        float64 `mapstructure:"momentum"`
	Optimizer       string  `mapstructure:"optimizer"`
	Seed            int64   `mapstructure:"seed"`
	NormalizeByMask bool    `mapstructure:"normalizeByMask"`
}

// Load reads configuration from path, falling back to defaults for any
// unset key. An empty path searches the working directory for
// convtag.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("convtag")
		v.SetConfigType("yaml")
	}

	v.SetDefault("data.dir", "data/conll2003")
	v.SetDefault("model.embedDim", 50)
	v.SetDefault("model.hiddenDims", []int{128, 128})
	v.SetDefault("model.kernelWidth", 3)
	v.SetDefault("model.keepProb", 0.5)
	v.SetDefault("train.epochs", 10)
	v.SetDefault("train.batchSize", 32)
	v.SetDefault("train.lr", 0.01)
	v.SetDefault("train.lrDecay", 1.0)
	v.SetDefault("train.momentum", 0.9)
	v.SetDefault("train.optimizer", "sgd")
	v.SetDefault("train.seed", 42)
	v.SetDefault("train.normalizeByMask", false)

	v.SetEnvPrefix("CONVTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if path != "" || !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the trainer cannot run with.
func (c *Config) Validate() error {
	if c.Train.Epochs < 1 {
		return fmt.Errorf("config: epochs must be positive, got %d", c.Train.Epochs)
	}
	if c.Train.BatchSize < 1 {
		return fmt.Errorf("config: batch size must be positive, got %d", c.Train.BatchSize)
	}
	if c.Train.LR <= 0 {
		return fmt.Errorf("config: learning rate must be positive, got %g", c.Train.LR)
	}
	if c.Train.LRDecay <= 0 || c.Train.LRDecay > 1 {
		return fmt.Errorf("config: lr decay must be in (0, 1], got %g", c.Train.LRDecay)
	}
	switch c.Train.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("config: unknown optimizer %q (want sgd or adam)", c.Train.Optimizer)
	}
	return nil
}
