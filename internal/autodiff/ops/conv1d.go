package ops

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/convtag-ml/convtag/internal/tensor"
)

// Conv1DForward convolves input over the token axis with "same" padding.
//
// Shapes:
//   - input:  [N, T, inCh]
//   - kernel: [outCh, K, inCh]
//   - bias:   [outCh]
//   - output: [N, T, outCh]
//
// "Same" padding keeps the output length equal to the input length, which
// the downstream loss and mask alignment depend on: a shrinking
// convolution would silently misalign predictions against the mask and
// the gold tags. Positions read past either end of the sequence
// contribute zero. For kernel width K the left pad is (K-1)/2 and the
// right pad is K/2.
//
// The batch dimension is processed by a worker pool; callers observe a
// plain synchronous call.
func Conv1DForward(input, kernel, bias *tensor.Tensor) *tensor.Tensor {
	n, seqLen, inCh := convDims(input)
	kShape := kernel.Shape()
	if len(kShape) != 3 || kShape[2] != inCh {
		panic(fmt.Sprintf("ops: conv1d kernel %v incompatible with input %v", kShape, input.Shape()))
	}
	outCh, width := kShape[0], kShape[1]
	if bias.NumElements() != outCh {
		panic(fmt.Sprintf("ops: conv1d bias %v incompatible with %d output channels", bias.Shape(), outCh))
	}

	out := tensor.New(tensor.Shape{n, seqLen, outCh})
	left := (width - 1) / 2

	in := input.Data()
	ker := kernel.Data()
	b := bias.Data()
	ov := out.Data()

	workers := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for row := 0; row < n; row++ {
		row := row
		workers.Go(func() {
			inRow := in[row*seqLen*inCh : (row+1)*seqLen*inCh]
			outRow := ov[row*seqLen*outCh : (row+1)*seqLen*outCh]
			for t := 0; t < seqLen; t++ {
				for co := 0; co < outCh; co++ {
					acc := b[co]
					for dk := 0; dk < width; dk++ {
						s := t + dk - left
						if s < 0 || s >= seqLen {
							continue
						}
						acc += tensor.Dot(
							inRow[s*inCh:(s+1)*inCh],
							ker[(co*width+dk)*inCh:(co*width+dk+1)*inCh],
						)
					}
					outRow[t*outCh+co] = acc
				}
			}
		})
	}
	workers.Wait()

	return out
}

// Conv1DOp records a 1-D convolution for the backward pass.
type Conv1DOp struct {
	input  *tensor.Tensor
	kernel *tensor.Tensor
	bias   *tensor.Tensor
	output *tensor.Tensor
}

// NewConv1DOp creates a Conv1DOp.
func NewConv1DOp(input, kernel, bias, output *tensor.Tensor) *Conv1DOp {
	return &Conv1DOp{input: input, kernel: kernel, bias: bias, output: output}
}

// Inputs returns [input, kernel, bias].
func (op *Conv1DOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input, op.kernel, op.bias}
}

// Output returns the convolved tensor.
func (op *Conv1DOp) Output() *tensor.Tensor {
	return op.output
}

// Backward computes gradients for input, kernel and bias.
//
// With out[n,t,co] = Σ_dk in[n,t+dk-left,:]·ker[co,dk,:] + b[co]:
//   - d in[n,s,:]    += Σ_{t,co} g[n,t,co] * ker[co,s-t+left,:]
//   - d ker[co,dk,:] += Σ_{n,t}  g[n,t,co] * in[n,t+dk-left,:]
//   - d b[co]        += Σ_{n,t}  g[n,t,co]
//
// The input gradient is row-independent and runs on the worker pool; the
// kernel and bias gradients accumulate across rows and stay serial.
func (op *Conv1DOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	n, seqLen, inCh := convDims(op.input)
	kShape := op.kernel.Shape()
	outCh, width := kShape[0], kShape[1]
	left := (width - 1) / 2

	gradInput := tensor.Zeros(op.input.Shape())
	gradKernel := tensor.Zeros(op.kernel.Shape())
	gradBias := tensor.Zeros(op.bias.Shape())

	in := op.input.Data()
	ker := op.kernel.Data()
	og := outputGrad.Data()
	gi := gradInput.Data()
	gk := gradKernel.Data()
	gb := gradBias.Data()

	workers := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for row := 0; row < n; row++ {
		row := row
		workers.Go(func() {
			giRow := gi[row*seqLen*inCh : (row+1)*seqLen*inCh]
			ogRow := og[row*seqLen*outCh : (row+1)*seqLen*outCh]
			for t := 0; t < seqLen; t++ {
				for co := 0; co < outCh; co++ {
					g := ogRow[t*outCh+co]
					if g == 0 {
						continue
					}
					for dk := 0; dk < width; dk++ {
						s := t + dk - left
						if s < 0 || s >= seqLen {
							continue
						}
						dst := giRow[s*inCh : (s+1)*inCh]
						src := ker[(co*width+dk)*inCh : (co*width+dk+1)*inCh]
						for j := range dst {
							dst[j] += g * src[j]
						}
					}
				}
			}
		})
	}
	workers.Wait()

	for row := 0; row < n; row++ {
		inRow := in[row*seqLen*inCh : (row+1)*seqLen*inCh]
		ogRow := og[row*seqLen*outCh : (row+1)*seqLen*outCh]
		for t := 0; t < seqLen; t++ {
			for co := 0; co < outCh; co++ {
				g := ogRow[t*outCh+co]
				if g == 0 {
					continue
				}
				gb[co] += g
				for dk := 0; dk < width; dk++ {
					s := t + dk - left
					if s < 0 || s >= seqLen {
						continue
					}
					dst := gk[(co*width+dk)*inCh : (co*width+dk+1)*inCh]
					src := inRow[s*inCh : (s+1)*inCh]
					for j := range dst {
						dst[j] += g * src[j]
					}
				}
			}
		}
	}

	return []*tensor.Tensor{gradInput, gradKernel, gradBias}
}

// convDims validates a [N, T, C] activation shape.
func convDims(t *tensor.Tensor) (n, seqLen, channels int) {
	shape := t.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("ops: conv1d expects [batch, tokens, channels], got %v", shape))
	}
	return shape[0], shape[1], shape[2]
}
