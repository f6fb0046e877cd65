package ops

import (
	"fmt"
	"math"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// MaskedCrossEntropyForward computes softmax cross-entropy per token,
// zeroes the contribution of padded positions, and reduces to a scalar.
//
// Shapes:
//   - logits: [N, T, numClasses]
//   - labels: [N, T] class ids in [0, numClasses)
//   - mask:   [N, T], 1 at real tokens and 0 at padding
//
// By default the sum of masked losses is divided by the total number of
// [N, T] entries, padded positions included. That under-weights batches
// with heterogeneous sentence lengths; normalizeByMask divides by the
// mask sum (the count of real tokens) instead.
//
// An empty batch yields a zero loss.
func MaskedCrossEntropyForward(logits *tensor.Tensor, labels *tensor.IntTensor, mask *tensor.Tensor, normalizeByMask bool) *tensor.Tensor {
	rows, classes := ceDims(logits, labels, mask)

	loss := tensor.New(tensor.Shape{1})
	denom := ceDenom(mask, rows, normalizeByMask)
	if denom == 0 {
		return loss
	}

	lv := logits.Data()
	labelData := labels.Data()
	maskData := mask.Data()

	total := 0.0
	for m := 0; m < rows; m++ {
		if maskData[m] == 0 {
			continue
		}
		row := lv[m*classes : (m+1)*classes]
		label := int(labelData[m])
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("ops: label %d out of range [0, %d)", label, classes))
		}
		total += -logSoftmax(row, label) * maskData[m]
	}
	loss.Data()[0] = total / denom
	return loss
}

// MaskedCrossEntropyOp records a masked cross-entropy reduction.
type MaskedCrossEntropyOp struct {
	logits          *tensor.Tensor
	labels          *tensor.IntTensor
	mask            *tensor.Tensor
	output          *tensor.Tensor
	normalizeByMask bool
}

// NewMaskedCrossEntropyOp creates a MaskedCrossEntropyOp.
func NewMaskedCrossEntropyOp(logits *tensor.Tensor, labels *tensor.IntTensor, mask *tensor.Tensor, output *tensor.Tensor, normalizeByMask bool) *MaskedCrossEntropyOp {
	return &MaskedCrossEntropyOp{
		logits:          logits,
		labels:          labels,
		mask:            mask,
		output:          output,
		normalizeByMask: normalizeByMask,
	}
}

// Inputs returns [logits]; labels and mask carry no gradient.
func (op *MaskedCrossEntropyOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.logits}
}

// Output returns the scalar loss.
func (op *MaskedCrossEntropyOp) Output() *tensor.Tensor {
	return op.output
}

// Backward computes d loss/d logits = (softmax - onehot) * mask / denom,
// scaled by the incoming scalar gradient.
func (op *MaskedCrossEntropyOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	rows, classes := ceDims(op.logits, op.labels, op.mask)
	grad := tensor.Zeros(op.logits.Shape())

	denom := ceDenom(op.mask, rows, op.normalizeByMask)
	if denom == 0 {
		return []*tensor.Tensor{grad}
	}
	scale := outputGrad.Item() / denom

	lv := op.logits.Data()
	labelData := op.labels.Data()
	maskData := op.mask.Data()
	g := grad.Data()

	for m := 0; m < rows; m++ {
		if maskData[m] == 0 {
			continue
		}
		row := lv[m*classes : (m+1)*classes]
		probs := softmax(row)
		label := int(labelData[m])
		gRow := g[m*classes : (m+1)*classes]
		for c := 0; c < classes; c++ {
			delta := probs[c]
			if c == label {
				delta -= 1
			}
			gRow[c] = delta * maskData[m] * scale
		}
	}
	return []*tensor.Tensor{grad}
}

// ceDims validates the logits/labels/mask shapes and returns the
// flattened token count and class count.
func ceDims(logits *tensor.Tensor, labels *tensor.IntTensor, mask *tensor.Tensor) (rows, classes int) {
	shape := logits.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("ops: cross-entropy logits must be [..., classes], got %v", shape))
	}
	classes = shape[len(shape)-1]
	rows = logits.NumElements() / max(classes, 1)
	if labels.NumElements() != rows || mask.NumElements() != rows {
		panic(fmt.Sprintf("ops: cross-entropy labels %v / mask %v incompatible with logits %v",
			labels.Shape(), mask.Shape(), shape))
	}
	return rows, classes
}

// ceDenom returns the averaging denominator: all entries, or the mask sum.
func ceDenom(mask *tensor.Tensor, rows int, normalizeByMask bool) float64 {
	if !normalizeByMask {
		return float64(rows)
	}
	total := 0.0
	for _, v := range mask.Data() {
		total += v
	}
	return total
}

// logSoftmax returns log(softmax(row))[label], stabilized with the
// log-sum-exp trick so large logits do not overflow.
func logSoftmax(row []float64, label int) float64 {
	maxVal := row[0]
	for _, v := range row[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	sumExp := 0.0
	for _, v := range row {
		sumExp += math.Exp(v - maxVal)
	}
	return row[label] - maxVal - math.Log(sumExp)
}

// softmax returns exp(row) normalized to sum to one.
func softmax(row []float64) []float64 {
	maxVal := row[0]
	for _, v := range row[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	out := make([]float64, len(row))
	sum := 0.0
	for i, v := range row {
		e := math.Exp(v - maxVal)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
