// Package checkpoint saves and restores trained tagger models.
//
// File layout:
//
//	magic "CVTG" (4 bytes)
//	header length (uint32, little endian)
//	JSON header: format version, model config, vocabularies, tensor metadata
//	tensor data: float64 values, little endian, in header order
//	SHA-256 checksum of the tensor data (32 bytes)
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/convtag-ml/convtag/internal/tagger"
)

const (
	magicBytes    = "CVTG"
	formatVersion = 1
	checksumSize  = 32
)

// Snapshot carries everything beyond the raw weights needed to rebuild
// and reuse a trained model.
type Snapshot struct {
	Config tagger.Config
	Tokens []string // token vocabulary in id order
	Tags   []string // tag vocabulary in id order
	Epoch  int
	Loss   float64
}

// header is the JSON header of a checkpoint file.
type header struct {
	FormatVersion int          `json:"format_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Config        modelConfig  `json:"config"`
	Tokens        []string     `json:"tokens"`
	Tags          []string     `json:"tags"`
	Epoch         int          `json:"epoch"`
	Loss          float64      `json:"loss"`
	Tensors       []tensorMeta `json:"tensors"`
}

// modelConfig mirrors tagger.Config with stable JSON field names.
type modelConfig struct {
	VocabSize   int     `json:"vocab_size"`
	NumTags     int     `json:"num_tags"`
	EmbedDim    int     `json:"embed_dim"`
	HiddenDims  []int   `json:"hidden_dims"`
	KernelWidth int     `json:"kernel_width"`
	KeepProb    float64 `json:"keep_prob"`
}

// tensorMeta describes one parameter tensor in the data section.
type tensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

func toModelConfig(c tagger.Config) modelConfig {
	return modelConfig{
		VocabSize:   c.VocabSize,
		NumTags:     c.NumTags,
		EmbedDim:    c.EmbedDim,
		HiddenDims:  c.HiddenDims,
		KernelWidth: c.KernelWidth,
		KeepProb:    c.KeepProb,
	}
}

func (m modelConfig) taggerConfig() tagger.Config {
	return tagger.Config{
		VocabSize:   m.VocabSize,
		NumTags:     m.NumTags,
		EmbedDim:    m.EmbedDim,
		HiddenDims:  m.HiddenDims,
		KernelWidth: m.KernelWidth,
		KeepProb:    m.KeepProb,
	}
}

func marshalHeader(h header) ([]byte, error) {
	return json.Marshal(h)
}
