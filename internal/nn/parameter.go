package nn

import "github.com/convtag-ml/convtag/internal/tensor"

// Parameter is a named trainable tensor.
//
// Parameters are the only state the optimizer mutates; gradients are
// produced by the tape and looked up per parameter tensor during the
// optimization step.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
}

// NewParameter wraps an initialized tensor as a trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name, e.g. "conv1.weight".
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// NumElements returns the number of scalar values in the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}
