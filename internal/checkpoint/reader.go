package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/convtag-ml/convtag/internal/tagger"
	"github.com/convtag-ml/convtag/internal/tensor"
)

var (
	// ErrBadMagic means the file is not a checkpoint.
	ErrBadMagic = errors.New("checkpoint: bad magic bytes")

	// ErrChecksum means the tensor data does not match its checksum.
	ErrChecksum = errors.New("checkpoint: data checksum mismatch")

	// ErrVersion means the file uses an unsupported format version.
	ErrVersion = errors.New("checkpoint: unsupported format version")

	// ErrHeader means the tensor metadata in the header is inconsistent.
	// The checksum covers only the data section, so the header itself
	// must be validated before any offset from it is used.
	ErrHeader = errors.New("checkpoint: inconsistent tensor metadata")
)

// Load reads a checkpoint, rebuilds the model and restores its weights.
// rng seeds the model's dropout source for any further training.
func Load(path string, rng *rand.Rand) (*tagger.CNNTagger, *Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	if len(raw) < len(magicBytes)+4 || string(raw[:len(magicBytes)]) != magicBytes {
		return nil, nil, ErrBadMagic
	}
	raw = raw[len(magicBytes):]

	headerLen := binary.LittleEndian.Uint32(raw[:4])
	raw = raw[4:]
	if uint32(len(raw)) < headerLen {
		return nil, nil, fmt.Errorf("checkpoint: truncated header (want %d bytes, have %d)", headerLen, len(raw))
	}

	var h header
	if err := json.Unmarshal(raw[:headerLen], &h); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if h.FormatVersion != formatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrVersion, h.FormatVersion)
	}
	data := raw[headerLen:]

	// The writer lays tensors out contiguously from offset zero; any
	// deviation means the header does not describe the data section.
	var dataSize int64
	for _, tm := range h.Tensors {
		if tm.Size < 0 || tm.Size%8 != 0 || tm.Offset != dataSize {
			return nil, nil, fmt.Errorf("%w: tensor %q offset %d size %d", ErrHeader, tm.Name, tm.Offset, tm.Size)
		}
		dataSize += tm.Size
	}
	if int64(len(data)) < dataSize+checksumSize {
		return nil, nil, fmt.Errorf("checkpoint: truncated data section (want %d bytes, have %d)", dataSize+checksumSize, len(data))
	}

	digest := sha256.Sum256(data[:dataSize])
	if !bytes.Equal(digest[:], data[dataSize:dataSize+checksumSize]) {
		return nil, nil, ErrChecksum
	}

	model, err := tagger.New(h.Config.taggerConfig(), rng)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rebuild model: %w", err)
	}

	params := model.Parameters()
	if len(params) != len(h.Tensors) {
		return nil, nil, fmt.Errorf("checkpoint: tensor count mismatch: file has %d, model wants %d", len(h.Tensors), len(params))
	}
	for i, p := range params {
		tm := h.Tensors[i]
		if !p.Tensor().Shape().Equal(tensor.Shape(tm.Shape)) {
			return nil, nil, fmt.Errorf("checkpoint: tensor %q shape mismatch: file has %v, model wants %v", tm.Name, tm.Shape, p.Tensor().Shape())
		}
		if tm.Size != int64(p.NumElements())*8 {
			return nil, nil, fmt.Errorf("%w: tensor %q holds %d bytes, shape %v wants %d", ErrHeader, tm.Name, tm.Size, tm.Shape, p.NumElements()*8)
		}
		dst := p.Tensor().Data()
		section := data[tm.Offset : tm.Offset+tm.Size]
		for j := range dst {
			dst[j] = math.Float64frombits(binary.LittleEndian.Uint64(section[j*8:]))
		}
	}

	snap := &Snapshot{
		Config: h.Config.taggerConfig(),
		Tokens: h.Tokens,
		Tags:   h.Tags,
		Epoch:  h.Epoch,
		Loss:   h.Loss,
	}
	return model, snap, nil
}
