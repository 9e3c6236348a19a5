//go:build !tflite

package model

import "errors"

// ErrTFLiteUnavailable is returned for .tflite models in builds without the tflite tag.
var ErrTFLiteUnavailable = errors.New("TFLite support not compiled in, rebuild with -tags tflite")

func newTFLiteNetwork(Description, []byte, RuntimeOptions) (Network, error) {
	return nil, ErrTFLiteUnavailable
}
