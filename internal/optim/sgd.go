package optim

import (
	"github.com/convtag-ml/convtag/internal/nn"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// SGD is stochastic gradient descent with optional momentum.
//
// Without momentum: param -= lr * grad.
// With momentum:    velocity = momentum*velocity + grad; param -= lr * velocity.
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig configures an SGD optimizer.
type SGDConfig struct {
	LR       float64 // learning rate (default 0.01)
	Momentum float64 // momentum factor in [0, 1), 0 disables
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step applies one gradient-descent update.
func (s *SGD) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	for _, param := range s.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}
		if s.momentum == 0 {
			param.Tensor().AddScaled(-s.lr, grad)
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = tensor.Zeros(param.Tensor().Shape())
			s.velocities[param] = velocity
		}
		velocity.Scale(s.momentum)
		velocity.AddInPlace(grad)
		param.Tensor().AddScaled(-s.lr, velocity)
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR replaces the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
