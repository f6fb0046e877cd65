package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convtag-ml/convtag/internal/tagger"
	"github.com/convtag-ml/convtag/internal/tensor"
)

func testModel(t *testing.T) *tagger.CNNTagger {
	t.Helper()
	model, err := tagger.New(tagger.Config{
		VocabSize:   9,
		NumTags:     3,
		EmbedDim:    4,
		HiddenDims:  []int{6},
		KernelWidth: 3,
		KeepProb:    0.8,
	}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	return model
}

func TestSaveLoadRoundTrip(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")

	snap := Snapshot{
		Tokens: []string{"<UNK>", "the", "cat"},
		Tags:   []string{"O", "B-PER", "I-PER"},
		Epoch:  7,
		Loss:   0.125,
	}
	require.NoError(t, Save(path, model, snap))

	loaded, gotSnap, err := Load(path, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	assert.Equal(t, model.Config(), loaded.Config())
	assert.Equal(t, snap.Tokens, gotSnap.Tokens)
	assert.Equal(t, snap.Tags, gotSnap.Tags)
	assert.Equal(t, 7, gotSnap.Epoch)
	assert.Equal(t, 0.125, gotSnap.Loss)

	origParams := model.Parameters()
	loadedParams := loaded.Parameters()
	require.Equal(t, len(origParams), len(loadedParams))
	for i := range origParams {
		assert.Equal(t, origParams[i].Tensor().Data(), loadedParams[i].Tensor().Data(),
			"parameter %s", origParams[i].Name())
	}
}

func TestLoadedModelPredictsIdentically(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")
	require.NoError(t, Save(path, model, Snapshot{}))

	loaded, _, err := Load(path, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	ids, err := tensor.IntFromSlice([]int32{1, 2, 3, 4}, tensor.Shape{1, 4})
	require.NoError(t, err)

	want := model.Predict(ids, nil)
	got := loaded.Predict(ids, nil)
	assert.Equal(t, want.Data(), got.Data())
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus")
	require.NoError(t, os.WriteFile(path, []byte("NOPE additional junk"), 0o644))

	_, _, err := Load(path, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadDetectsCorruption(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")
	require.NoError(t, Save(path, model, Snapshot{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-checksumSize-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, _, err = Load(path, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrChecksum)
}

// rewriteHeader re-encodes a checkpoint file's JSON header after
// applying mutate, leaving the data section and checksum untouched.
func rewriteHeader(t *testing.T, path string, mutate func(*header)) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	body := raw[len(magicBytes):]
	headerLen := binary.LittleEndian.Uint32(body[:4])
	var h header
	require.NoError(t, json.Unmarshal(body[4:4+headerLen], &h))

	mutate(&h)
	headerJSON, err := json.Marshal(h)
	require.NoError(t, err)

	var out bytes.Buffer
	out.WriteString(magicBytes)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, uint32(len(headerJSON))))
	out.Write(headerJSON)
	out.Write(body[4+headerLen:])
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
}

func TestLoadRejectsOffsetBeyondData(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")
	require.NoError(t, Save(path, model, Snapshot{}))

	// The data section and its checksum stay intact; only the offset
	// table lies. Load must fail with a typed error, not panic.
	rewriteHeader(t, path, func(h *header) {
		h.Tensors[0].Offset = 1 << 40
	})

	_, _, err := Load(path, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrHeader)
}

func TestLoadRejectsNegativeTensorSize(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")
	require.NoError(t, Save(path, model, Snapshot{}))

	rewriteHeader(t, path, func(h *header) {
		h.Tensors[0].Size = -8
	})

	_, _, err := Load(path, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrHeader)
}

func TestLoadRejectsSizeShapeMismatch(t *testing.T) {
	model := testModel(t)
	path := filepath.Join(t.TempDir(), "model.cvtg")
	require.NoError(t, Save(path, model, Snapshot{}))

	// Shift 8 bytes from the first tensor to the second so the layout
	// stays contiguous and the total matches the data section, but the
	// first tensor no longer holds enough values for its shape.
	rewriteHeader(t, path, func(h *header) {
		require.GreaterOrEqual(t, len(h.Tensors), 2)
		h.Tensors[0].Size -= 8
		h.Tensors[1].Offset -= 8
		h.Tensors[1].Size += 8
	})

	_, _, err := Load(path, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrHeader)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent"), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
