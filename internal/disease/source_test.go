package disease

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestFileSourceDecodes(t *testing.T) {
	src := FileSource{Filename: "leaf.png", Reader: bytes.NewReader(pngBytes(t, leafImage(40, 30)))}
	img, err := src.Image(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds = %v", b)
	}
	if src.Name() != "leaf.png" {
		t.Errorf("name = %q", src.Name())
	}
}

func TestFileSourceErrors(t *testing.T) {
	if _, err := (FileSource{}).Image(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil reader err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := FileSource{Reader: bytes.NewReader(pngBytes(t, leafImage(40, 40)))}
	if _, err := src.Image(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v", err)
	}

	truncated := pngBytes(t, leafImage(40, 40))[:20]
	if _, err := (FileSource{Reader: bytes.NewReader(truncated)}).Image(context.Background()); !errors.Is(err, ErrImageDecode) {
		t.Errorf("truncated err = %v", err)
	}
}

func TestImageSource(t *testing.T) {
	if _, err := (ImageSource{}).Image(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if (ImageSource{}).Name() != "image" {
		t.Error("default name")
	}
}
