package checkpoint

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/convtag-ml/convtag/internal/tagger"
)

// Save writes the model's weights and the snapshot metadata to path.
func Save(path string, model *tagger.CNNTagger, snap Snapshot) error {
	params := model.Parameters()

	h := header{
		FormatVersion: formatVersion,
		CreatedAt:     time.Now().UTC(),
		Config:        toModelConfig(model.Config()),
		Tokens:        snap.Tokens,
		Tags:          snap.Tags,
		Epoch:         snap.Epoch,
		Loss:          snap.Loss,
		Tensors:       make([]tensorMeta, 0, len(params)),
	}

	var offset int64
	for _, p := range params {
		size := int64(p.NumElements() * 8)
		h.Tensors = append(h.Tensors, tensorMeta{
			Name:   p.Name(),
			Shape:  []int(p.Tensor().Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := marshalHeader(h)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(magicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header length: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	digest := sha256.New()
	buf := make([]byte, 8)
	for _, p := range params {
		for _, v := range p.Tensor().Data() {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("failed to write tensor data: %w", err)
			}
			digest.Write(buf)
		}
	}

	if _, err := w.Write(digest.Sum(nil)); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return f.Sync()
}
