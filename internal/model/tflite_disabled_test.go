//go:build !tflite

package model

import (
	"errors"
	"testing"
)

func TestOpenTFLiteWithoutTag(t *testing.T) {
	desc, _ := Repair(Description{ModelFile: "model.tflite"})
	if _, err := NewOpener(RuntimeOptions{Threads: 1})(desc, []byte("tfl3")); !errors.Is(err, ErrTFLiteUnavailable) {
		t.Errorf("err = %v", err)
	}
}
