package model

import "fmt"

// Network runs one forward pass over a flattened input tensor and returns the
// class probabilities. Implementations bind fixed-size tensors, so Loader never
// calls Run concurrently.
type Network interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// Opener builds a Network from a repaired description and the raw model bytes.
type Opener func(desc Description, data []byte) (Network, error)

// RuntimeOptions configures the native runtimes.
type RuntimeOptions struct {
	OnnxLibraryPath string
	Threads         int
}

// NewOpener returns the Opener dispatching on Description.Format.
func NewOpener(opts RuntimeOptions) Opener {
	return func(desc Description, data []byte) (Network, error) {
		switch desc.Format {
		case FormatONNX:
			return newONNXNetwork(desc, data, opts)
		case FormatTFLite:
			return newTFLiteNetwork(desc, data, opts)
		default:
			return nil, fmt.Errorf("unsupported model format %q", desc.Format)
		}
	}
}
