package model

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
)

// ValidateImage rejects images the classifier cannot use.
func ValidateImage(img image.Image) error {
	if img == nil {
		return ErrInvalidImage
	}
	b := img.Bounds()
	if b.Empty() {
		return ErrImageIncomplete
	}
	if b.Dx() < MinImageSize || b.Dy() < MinImageSize {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrImageTooSmall, b.Dx(), b.Dy(), MinImageSize, MinImageSize)
	}
	return nil
}

// Preprocess resizes img to the network's input size and lays it out as a
// normalized [0,1] float tensor in desc's layout.
func Preprocess(img image.Image, desc Description) []float32 {
	height, width := desc.InputSize()
	resized := resize.Resize(uint(width), uint(height), img, resize.Bilinear)

	bounds := resized.Bounds()
	plane := width * height
	inputData := make([]float32, NumChannels*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			rNorm := float32(r) / 65535.0
			gNorm := float32(g) / 65535.0
			bNorm := float32(b) / 65535.0

			pixelIndex := y*width + x
			if desc.Layout == LayoutNCHW {
				inputData[pixelIndex] = rNorm
				inputData[plane+pixelIndex] = gNorm
				inputData[2*plane+pixelIndex] = bNorm
			} else {
				inputData[pixelIndex*NumChannels] = rNorm
				inputData[pixelIndex*NumChannels+1] = gNorm
				inputData[pixelIndex*NumChannels+2] = bNorm
			}
		}
	}

	return inputData
}
