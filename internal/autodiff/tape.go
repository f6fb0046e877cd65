// Package autodiff provides reverse-mode automatic differentiation for
// the tagger's training loop. A Tape records operations during the
// forward pass and replays them in reverse to accumulate gradients.
package autodiff

import (
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Tape records differentiable operations in execution order.
//
// Usage:
//
//	tape := autodiff.NewTape()
//	tape.StartRecording()
//	// ... forward pass ...
//	grads := tape.Backward(outputGrad)
//	tape.Clear()
type Tape struct {
	operations []ops.Operation
	recording  bool
}

// NewTape creates an empty, non-recording tape.
func NewTape() *Tape {
	return &Tape{operations: make([]ops.Operation, 0, 64)}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *Tape) StopRecording() {
	t.recording = false
}

// IsRecording reports whether operations are currently recorded.
func (t *Tape) IsRecording() bool {
	return t.recording
}

// Record appends an operation to the tape when recording is enabled.
func (t *Tape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear removes all recorded operations. The recording state is kept.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int {
	return len(t.operations)
}

// Backward walks the tape in reverse and accumulates gradients.
//
// outputGrad is the gradient of the loss with respect to the last
// operation's output (ones, for a scalar loss). Gradients for tensors
// used by several operations are summed. Recording is paused while the
// backward pass runs so gradient arithmetic is never taped.
//
// Returns a map from tensor to accumulated gradient.
func (t *Tape) Backward(outputGrad *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	grads := make(map[*tensor.Tensor]*tensor.Tensor)
	if len(t.operations) == 0 {
		return grads
	}

	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	last := t.operations[len(t.operations)-1]
	grads[last.Output()] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		og, ok := grads[op.Output()]
		if !ok {
			// No gradient flows through this operation's output.
			continue
		}
		inputGrads := op.Backward(og)
		inputs := op.Inputs()
		for j, input := range inputs {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				existing.AddInPlace(inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
