package model

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want error
	}{
		{"nil", nil, ErrInvalidImage},
		{"empty", image.NewRGBA(image.Rect(5, 5, 5, 5)), ErrImageIncomplete},
		{"narrow", uniformImage(31, 64), ErrImageTooSmall},
		{"minimum", uniformImage(32, 32), nil},
		{"offset bounds", image.NewRGBA(image.Rect(100, 100, 164, 164)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.img)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreprocessLayouts(t *testing.T) {
	img := uniformImage(50, 70)
	r, g, b := float32(40)/255, float32(160)/255, float32(60)/255

	nhwc := DefaultDescription()
	data := Preprocess(img, nhwc)
	if len(data) != nhwc.InputLen() {
		t.Fatalf("NHWC len = %d, want %d", len(data), nhwc.InputLen())
	}
	assertNear(t, data[0], r)
	assertNear(t, data[1], g)
	assertNear(t, data[2], b)

	nchw, _ := Repair(Description{Layout: LayoutNCHW, InputShape: []int64{1, 3, 48, 48}})
	data = Preprocess(img, nchw)
	if len(data) != 3*48*48 {
		t.Fatalf("NCHW len = %d", len(data))
	}
	plane := 48 * 48
	assertNear(t, data[0], r)
	assertNear(t, data[plane], g)
	assertNear(t, data[2*plane], b)
}

func assertNear(t *testing.T, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > 0.01 {
		t.Errorf("got %v, want %v", got, want)
	}
}
