// Package optim implements the optimization algorithms used to train
// the tagger: plain SGD with optional momentum, and Adam.
//
// Optimizers consume the gradient map produced by the tape's backward
// pass and update parameter tensors in place, once per batch:
//
//	grads := tape.Backward(ones)
//	optimizer.Step(grads)
//	tape.Clear()
package optim

import (
	"github.com/convtag-ml/convtag/internal/nn"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Optimizer updates model parameters from computed gradients.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient
	// in the map. Parameters absent from the map are skipped.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// LR returns the current learning rate.
	LR() float64

	// SetLR replaces the learning rate; used by decay schedules.
	SetLR(lr float64)
}

var (
	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*Adam)(nil)
)

// gradientFor looks up the gradient recorded for a parameter tensor.
func gradientFor(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor()]
}
