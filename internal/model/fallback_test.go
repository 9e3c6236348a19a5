package model

import (
	"errors"
	"math"
	"testing"
)

func TestFallbackNetworkOutputsDistribution(t *testing.T) {
	desc := DefaultDescription()
	net, err := NewFallbackNetwork(desc, 42)
	if err != nil {
		t.Fatal(err)
	}
	defer net.Close()

	input := Preprocess(uniformImage(100, 80), desc)
	out, err := net.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(OriginalClasses) {
		t.Fatalf("got %d outputs", len(out))
	}

	var sum float64
	for _, p := range out {
		if p < 0 || p > 1 {
			t.Errorf("probability out of range: %v", p)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("probabilities sum to %v", sum)
	}
}

func TestFallbackNetworkIsDeterministicPerSeed(t *testing.T) {
	desc := DefaultDescription()
	a, _ := NewFallbackNetwork(desc, 3)
	b, _ := NewFallbackNetwork(desc, 3)
	input := Preprocess(uniformImage(64, 64), desc)

	outA, _ := a.Run(input)
	outB, _ := b.Run(input)
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("output %d differs: %v vs %v", i, outA[i], outB[i])
		}
	}
}

func TestFallbackNetworkRejectsBadInput(t *testing.T) {
	net, _ := NewFallbackNetwork(DefaultDescription(), 1)
	if _, err := net.Run(make([]float32, 12)); !errors.Is(err, ErrInputSize) {
		t.Errorf("err = %v", err)
	}

	nchw, _ := Repair(Description{Layout: LayoutNCHW})
	if _, err := NewFallbackNetwork(nchw, 1); err == nil {
		t.Error("expected layout error")
	}
}

func TestSoftmax(t *testing.T) {
	out := softmax([]float32{1000, 1000})
	if out[0] != 0.5 || out[1] != 0.5 {
		t.Errorf("softmax = %v", out)
	}
}
