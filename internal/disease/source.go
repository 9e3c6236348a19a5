package disease

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

var (
	ErrInvalidInput = errors.New("input must be an image or an image file")
	ErrImageDecode  = errors.New("failed to load image")
)

// Source is something Diagnose can turn into a decoded image.
type Source interface {
	Image(ctx context.Context) (image.Image, error)
	Name() string
}

// ImageSource wraps an already decoded image.
type ImageSource struct {
	Img   image.Image
	Label string
}

func (s ImageSource) Image(context.Context) (image.Image, error) {
	if s.Img == nil {
		return nil, ErrInvalidInput
	}
	return s.Img, nil
}

func (s ImageSource) Name() string {
	if s.Label == "" {
		return "image"
	}
	return s.Label
}

// FileSource is an uploaded or on-disk image file (JPEG, PNG, GIF, BMP, TIFF).
type FileSource struct {
	Filename string
	Reader   io.Reader
}

// Image decodes the file, applying any EXIF orientation.
func (s FileSource) Image(ctx context.Context) (image.Image, error) {
	if s.Reader == nil {
		return nil, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(s.Reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, s.Name(), err)
	}
	return img, nil
}

func (s FileSource) Name() string {
	if s.Filename == "" {
		return "upload"
	}
	return s.Filename
}
