package nn

import (
	"fmt"
	"math/rand"

	"github.com/convtag-ml/convtag/internal/autodiff"
	"github.com/convtag-ml/convtag/internal/autodiff/ops"
	"github.com/convtag-ml/convtag/internal/tensor"
)

// Dropout zeroes activations with probability 1-KeepProb during
// training and scales the survivors by 1/KeepProb (inverted dropout), so
// inference needs no rescaling. Outside training it is the identity.
type Dropout struct {
	KeepProb float64

	rng  *rand.Rand
	tape *autodiff.Tape
}

// NewDropout creates a Dropout layer recording on tape.
// keepProb must be in (0, 1]; rng may be nil to use the global source.
func NewDropout(keepProb float64, rng *rand.Rand, tape *autodiff.Tape) *Dropout {
	if keepProb <= 0 || keepProb > 1 {
		panic(fmt.Sprintf("nn: dropout keep probability %v outside (0, 1]", keepProb))
	}
	return &Dropout{KeepProb: keepProb, rng: rng, tape: tape}
}

// Forward applies dropout when training is true, otherwise passes the
// input through unchanged.
func (d *Dropout) Forward(input *tensor.Tensor, training bool) *tensor.Tensor {
	if !training || d.KeepProb == 1 {
		return input
	}
	out, mask := ops.DropoutForward(input, d.KeepProb, d.rng)
	d.tape.Record(ops.NewDropoutOp(input, mask, out))
	return out
}

// Parameters returns nil; Dropout has no trainable state.
func (d *Dropout) Parameters() []*Parameter {
	return nil
}
