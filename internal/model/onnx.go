package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortMu sync.Mutex

func initONNXEnvironment(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// ReleaseONNX tears down the shared ONNX Runtime environment, if it was started.
func ReleaseONNX() {
	ortMu.Lock()
	defer ortMu.Unlock()

	if ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}

type onnxNetwork struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func newONNXNetwork(desc Description, data []byte, opts RuntimeOptions) (Network, error) {
	if err := initONNXEnvironment(opts.OnnxLibraryPath); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(desc.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(desc.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()
	if opts.Threads > 0 {
		if err := options.SetIntraOpNumThreads(opts.Threads); err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := ort.NewAdvancedSessionWithONNXData(data,
		[]string{desc.InputName}, []string{desc.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		options)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxNetwork{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (n *onnxNetwork) Run(input []float32) ([]float32, error) {
	in := n.inputTensor.GetData()
	if len(input) != len(in) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, len(in), len(input))
	}
	copy(in, input)

	if err := n.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := n.outputTensor.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (n *onnxNetwork) Close() error {
	if n.inputTensor != nil {
		n.inputTensor.Destroy()
	}
	if n.outputTensor != nil {
		n.outputTensor.Destroy()
	}
	if n.session != nil {
		return n.session.Destroy()
	}
	return nil
}
