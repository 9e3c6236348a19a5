package model

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

const (
	FormatONNX   = "onnx"
	FormatTFLite = "tflite"

	LayoutNHWC = "NHWC"
	LayoutNCHW = "NCHW"
)

// Description is the served model.json next to the weights. Any field may be missing;
// Repair fills in what the classifier needs.
type Description struct {
	Format      string   `json:"format"`
	ModelFile   string   `json:"model_file"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Layout      string   `json:"layout"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// DefaultDescription describes the placeholder network: NHWC 1×224×224×3 in, 10 classes out.
func DefaultDescription() Description {
	d, _ := Repair(Description{})
	return d
}

// ParseDescription decodes a model description document.
func ParseDescription(data []byte) (Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return Description{}, fmt.Errorf("failed to parse model description: %w", err)
	}
	return d, nil
}

// Repair returns a copy of d with every missing or implicit field filled in, plus a
// note for each change made. A missing or partially declared input shape is forced
// to 224×224×3 in the description's layout.
func Repair(d Description) (Description, []string) {
	var fixes []string
	fix := func(format string, args ...interface{}) {
		fixes = append(fixes, fmt.Sprintf(format, args...))
	}

	switch strings.ToUpper(d.Layout) {
	case LayoutNHWC, LayoutNCHW:
		d.Layout = strings.ToUpper(d.Layout)
	default:
		if d.Layout != "" {
			fix("unsupported layout %q replaced with %s", d.Layout, LayoutNHWC)
		}
		d.Layout = LayoutNHWC
	}

	if d.Format == "" {
		d.Format = formatFromFile(d.ModelFile)
		fix("format inferred as %s", d.Format)
	}
	d.Format = strings.ToLower(d.Format)
	if d.ModelFile == "" {
		d.ModelFile = "model." + d.Format
		fix("model file defaulted to %s", d.ModelFile)
	}

	if d.InputName == "" {
		d.InputName = "input"
	}
	if d.OutputName == "" {
		d.OutputName = "output"
	}

	defaultInput := defaultInputShape(d.Layout)
	switch {
	case len(d.InputShape) != 4:
		d.InputShape = defaultInput
		fix("input shape set to %v", d.InputShape)
	case d.InputShape[0] <= 0 && positive(d.InputShape[1:]):
		d.InputShape = append([]int64{1}, d.InputShape[1:]...)
		fix("implicit batch dimension set to 1")
	case !positive(d.InputShape):
		d.InputShape = defaultInput
		fix("input shape set to %v", d.InputShape)
	}
	if d.channels() != NumChannels {
		d.InputShape = defaultInput
		fix("input shape set to %v for %d channel RGB input", d.InputShape, NumChannels)
	}

	if len(d.Classes) == 0 {
		d.Classes = append([]string(nil), OriginalClasses...)
		fix("class list defaulted to %d built-in classes", len(d.Classes))
	}

	if len(d.OutputShape) == 0 || !positive(d.OutputShape) {
		d.OutputShape = []int64{1, int64(len(d.Classes))}
		fix("output shape set to %v", d.OutputShape)
	}

	d.ImageSize, _ = d.InputSize()

	return d, fixes
}

// InputSize returns the height and width the network expects.
func (d Description) InputSize() (height, width int) {
	if len(d.InputShape) != 4 {
		return DefaultImageSize, DefaultImageSize
	}
	if d.Layout == LayoutNCHW {
		return int(d.InputShape[2]), int(d.InputShape[3])
	}
	return int(d.InputShape[1]), int(d.InputShape[2])
}

func (d Description) channels() int {
	if d.Layout == LayoutNCHW {
		return int(d.InputShape[1])
	}
	return int(d.InputShape[3])
}

// InputLen is the number of float32 values one input tensor holds.
func (d Description) InputLen() int {
	return shapeLen(d.InputShape)
}

// OutputLen is the number of float32 values the network produces.
func (d Description) OutputLen() int {
	return shapeLen(d.OutputShape)
}

func shapeLen(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}

func defaultInputShape(layout string) []int64 {
	if layout == LayoutNCHW {
		return []int64{1, NumChannels, DefaultImageSize, DefaultImageSize}
	}
	return []int64{1, DefaultImageSize, DefaultImageSize, NumChannels}
}

func formatFromFile(file string) string {
	if strings.EqualFold(path.Ext(file), ".tflite") {
		return FormatTFLite
	}
	return FormatONNX
}

func positive(dims []int64) bool {
	for _, d := range dims {
		if d <= 0 {
			return false
		}
	}
	return true
}
