package model

import (
	"reflect"
	"testing"
)

func TestRepairEmptyDescription(t *testing.T) {
	d, fixes := Repair(Description{})

	if d.Format != FormatONNX || d.ModelFile != "model.onnx" {
		t.Errorf("format/file = %q/%q", d.Format, d.ModelFile)
	}
	if d.Layout != LayoutNHWC {
		t.Errorf("layout = %q", d.Layout)
	}
	if !reflect.DeepEqual(d.InputShape, []int64{1, 224, 224, 3}) {
		t.Errorf("input shape = %v", d.InputShape)
	}
	if !reflect.DeepEqual(d.OutputShape, []int64{1, 10}) {
		t.Errorf("output shape = %v", d.OutputShape)
	}
	if !reflect.DeepEqual(d.Classes, OriginalClasses) {
		t.Errorf("classes = %v", d.Classes)
	}
	if d.InputName != "input" || d.OutputName != "output" {
		t.Errorf("tensor names = %q/%q", d.InputName, d.OutputName)
	}
	if d.ImageSize != 224 {
		t.Errorf("image size = %d", d.ImageSize)
	}
	if len(fixes) == 0 {
		t.Error("expected repair notes")
	}
}

func TestRepairInputShape(t *testing.T) {
	tests := []struct {
		name   string
		in     Description
		want   []int64
		height int
	}{
		{"implicit batch", Description{InputShape: []int64{-1, 256, 256, 3}}, []int64{1, 256, 256, 3}, 256},
		{"null batch from json", Description{InputShape: []int64{0, 128, 128, 3}}, []int64{1, 128, 128, 3}, 128},
		{"missing dims", Description{InputShape: []int64{224, 224}}, []int64{1, 224, 224, 3}, 224},
		{"unknown spatial dim", Description{InputShape: []int64{1, 0, 224, 3}}, []int64{1, 224, 224, 3}, 224},
		{"wrong channels", Description{InputShape: []int64{1, 224, 224, 1}}, []int64{1, 224, 224, 3}, 224},
		{"nchw default", Description{Layout: "nchw"}, []int64{1, 3, 224, 224}, 224},
		{"nchw kept", Description{Layout: "NCHW", InputShape: []int64{1, 3, 48, 48}}, []int64{1, 3, 48, 48}, 48},
		{"complete shape kept", Description{InputShape: []int64{1, 224, 224, 3}}, []int64{1, 224, 224, 3}, 224},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := Repair(tt.in)
			if !reflect.DeepEqual(d.InputShape, tt.want) {
				t.Errorf("input shape = %v, want %v", d.InputShape, tt.want)
			}
			if h, _ := d.InputSize(); h != tt.height {
				t.Errorf("height = %d, want %d", h, tt.height)
			}
		})
	}
}

func TestRepairKeepsDeclaredFields(t *testing.T) {
	in := Description{
		Format:      "TFLITE",
		ModelFile:   "leaf.tflite",
		InputName:   "pixels",
		OutputName:  "probs",
		InputShape:  []int64{1, 224, 224, 3},
		OutputShape: []int64{1, 3},
		Classes:     []string{"Healthy", "Late_blight", "Leaf_mold"},
	}
	d, fixes := Repair(in)
	if len(fixes) != 0 {
		t.Errorf("unexpected fixes: %v", fixes)
	}
	if d.Format != FormatTFLite || d.ModelFile != "leaf.tflite" || d.InputName != "pixels" || d.OutputName != "probs" {
		t.Errorf("declared fields changed: %+v", d)
	}
	if d.OutputLen() != 3 {
		t.Errorf("output len = %d", d.OutputLen())
	}
}

func TestRepairInfersFormatFromFile(t *testing.T) {
	d, _ := Repair(Description{ModelFile: "plant.tflite"})
	if d.Format != FormatTFLite {
		t.Errorf("format = %q", d.Format)
	}
}

func TestParseDescription(t *testing.T) {
	d, err := ParseDescription([]byte(`{"model_file":"model.onnx","input_shape":[null,224,224,3],"classes":["a","b"]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	repaired, _ := Repair(d)
	if repaired.InputShape[0] != 1 {
		t.Errorf("null batch not repaired: %v", repaired.InputShape)
	}
	if !reflect.DeepEqual(repaired.OutputShape, []int64{1, 2}) {
		t.Errorf("output shape = %v", repaired.OutputShape)
	}

	if _, err := ParseDescription([]byte(`{not json`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"Yellow_leaf_curl_virus": "Yellow Leaf Curl Virus",
		"Healthy":                "Healthy",
		"powdery_mildew":         "Powdery Mildew",
		"écorce_brûlée":          "Écorce Brûlée",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := DisplayClasses(); len(got) != len(OriginalClasses) || got[0] != "Bacterial Spot" {
		t.Errorf("DisplayClasses() = %v", got)
	}
}
