package model

import (
	"fmt"
	"math"
	"math/rand"
)

// fallbackNetwork is a small randomly initialized CNN used when no served model can be
// loaded. Its predictions carry no meaning; it keeps the pipeline shape-correct.
//
//	conv3x3(8, stride 2) → relu → maxpool2 → conv3x3(16) → relu → global avg pool → dense → softmax
type fallbackNetwork struct {
	size    int
	classes int

	conv1 convLayer
	conv2 convLayer
	dense denseLayer
}

type convLayer struct {
	in, out, stride int
	weights         []float32 // [out][3][3][in]
	bias            []float32
}

type denseLayer struct {
	in, out int
	weights []float32 // [out][in]
	bias    []float32
}

// NewFallbackNetwork builds the placeholder network for an NHWC input of desc's size.
func NewFallbackNetwork(desc Description, seed int64) (Network, error) {
	if desc.Layout != LayoutNHWC {
		return nil, fmt.Errorf("fallback network needs %s input, got %s", LayoutNHWC, desc.Layout)
	}
	h, w := desc.InputSize()
	if h != w || h < MinImageSize {
		return nil, fmt.Errorf("fallback network needs a square input of at least %d, got %dx%d", MinImageSize, h, w)
	}
	if len(desc.Classes) == 0 {
		return nil, fmt.Errorf("fallback network needs at least one class")
	}

	rng := rand.New(rand.NewSource(seed))
	return &fallbackNetwork{
		size:    h,
		classes: len(desc.Classes),
		conv1:   newConvLayer(rng, NumChannels, 8, 2),
		conv2:   newConvLayer(rng, 8, 16, 1),
		dense:   newDenseLayer(rng, 16, len(desc.Classes)),
	}, nil
}

func newConvLayer(rng *rand.Rand, in, out, stride int) convLayer {
	l := convLayer{in: in, out: out, stride: stride,
		weights: make([]float32, out*9*in),
		bias:    make([]float32, out),
	}
	heUniform(rng, l.weights, 9*in)
	return l
}

func newDenseLayer(rng *rand.Rand, in, out int) denseLayer {
	l := denseLayer{in: in, out: out,
		weights: make([]float32, out*in),
		bias:    make([]float32, out),
	}
	heUniform(rng, l.weights, in)
	return l
}

func heUniform(rng *rand.Rand, w []float32, fanIn int) {
	limit := math.Sqrt(6 / float64(fanIn))
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * limit)
	}
}

func (n *fallbackNetwork) Run(input []float32) ([]float32, error) {
	if want := n.size * n.size * NumChannels; len(input) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, want, len(input))
	}

	x, size := n.conv1.forward(input, n.size)
	x, size = maxPool2(x, size, n.conv1.out)
	x, size = n.conv2.forward(x, size)

	pooled := make([]float32, n.conv2.out)
	for i := 0; i < size*size; i++ {
		for c := 0; c < n.conv2.out; c++ {
			pooled[c] += x[i*n.conv2.out+c]
		}
	}
	for c := range pooled {
		pooled[c] /= float32(size * size)
	}

	return softmax(n.dense.forward(pooled)), nil
}

func (n *fallbackNetwork) Close() error { return nil }

// forward applies a valid-padded 3×3 convolution with ReLU to an HWC square tensor.
func (l convLayer) forward(x []float32, size int) ([]float32, int) {
	outSize := (size-3)/l.stride + 1
	out := make([]float32, outSize*outSize*l.out)

	for oy := 0; oy < outSize; oy++ {
		for ox := 0; ox < outSize; ox++ {
			base := (oy*outSize + ox) * l.out
			for f := 0; f < l.out; f++ {
				sum := l.bias[f]
				wf := l.weights[f*9*l.in:]
				for ky := 0; ky < 3; ky++ {
					iy := oy*l.stride + ky
					for kx := 0; kx < 3; kx++ {
						ix := ox*l.stride + kx
						px := x[(iy*size+ix)*l.in:]
						wk := wf[(ky*3+kx)*l.in:]
						for c := 0; c < l.in; c++ {
							sum += px[c] * wk[c]
						}
					}
				}
				if sum < 0 {
					sum = 0
				}
				out[base+f] = sum
			}
		}
	}
	return out, outSize
}

func maxPool2(x []float32, size, channels int) ([]float32, int) {
	outSize := size / 2
	out := make([]float32, outSize*outSize*channels)
	for oy := 0; oy < outSize; oy++ {
		for ox := 0; ox < outSize; ox++ {
			for c := 0; c < channels; c++ {
				m := float32(math.Inf(-1))
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						v := x[((oy*2+dy)*size+ox*2+dx)*channels+c]
						if v > m {
							m = v
						}
					}
				}
				out[(oy*outSize+ox)*channels+c] = m
			}
		}
	}
	return out, outSize
}

func (l denseLayer) forward(x []float32) []float32 {
	out := make([]float32, l.out)
	for o := 0; o < l.out; o++ {
		sum := l.bias[o]
		for i := 0; i < l.in; i++ {
			sum += l.weights[o*l.in+i] * x[i]
		}
		out[o] = sum
	}
	return out
}

func softmax(logits []float32) []float32 {
	peak := logits[0]
	for _, v := range logits[1:] {
		if v > peak {
			peak = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - peak))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
