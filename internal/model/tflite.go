//go:build tflite

package model

import (
	"errors"
	"fmt"

	"github.com/mattn/go-tflite"
)

type tfliteNetwork struct {
	model       *tflite.Model
	interpreter *tflite.Interpreter
}

func newTFLiteNetwork(desc Description, data []byte, opts RuntimeOptions) (Network, error) {
	m := tflite.NewModel(data)
	if m == nil {
		return nil, errors.New("failed to parse TFLite model")
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	if opts.Threads > 0 {
		options.SetNumThread(opts.Threads)
	}

	interpreter := tflite.NewInterpreter(m, options)
	if interpreter == nil {
		m.Delete()
		return nil, errors.New("failed to create TFLite interpreter")
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		m.Delete()
		return nil, fmt.Errorf("failed to allocate TFLite tensors: status %v", status)
	}

	input := interpreter.GetInputTensor(0)
	if input.Type() != tflite.Float32 {
		interpreter.Delete()
		m.Delete()
		return nil, fmt.Errorf("TFLite input tensor must be float32, got %v", input.Type())
	}
	if got, want := len(input.Float32s()), desc.InputLen(); got != want {
		interpreter.Delete()
		m.Delete()
		return nil, fmt.Errorf("%w: model takes %d values, description declares %d", ErrInputSize, got, want)
	}

	return &tfliteNetwork{model: m, interpreter: interpreter}, nil
}

func (n *tfliteNetwork) Run(input []float32) ([]float32, error) {
	in := n.interpreter.GetInputTensor(0).Float32s()
	if len(input) != len(in) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, len(in), len(input))
	}
	copy(in, input)

	if status := n.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("inference failed: status %v", status)
	}

	out := n.interpreter.GetOutputTensor(0).Float32s()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (n *tfliteNetwork) Close() error {
	if n.interpreter != nil {
		n.interpreter.Delete()
	}
	if n.model != nil {
		n.model.Delete()
	}
	return nil
}
