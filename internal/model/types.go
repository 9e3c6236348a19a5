package model

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnknownClass is reported whenever no confident prediction could be made.
	UnknownClass = "Unknown"

	DefaultThreshold float32 = 0.1
	DefaultImageSize         = 224
	MinImageSize             = 32
	NumChannels              = 3
)

// OriginalClasses are the raw labels the classifier was trained on, in output order.
var OriginalClasses = []string{
	"Bacterial_spot",
	"Early_blight",
	"Late_blight",
	"Leaf_mold",
	"Yellow_leaf_curl_virus",
	"Mosaic_virus",
	"Target_spot",
	"Spider_mites",
	"Septoria_leaf_spot",
	"Healthy",
}

var displayNames = map[string]string{
	"Bacterial_spot":         "Bacterial Spot",
	"Early_blight":           "Early Blight",
	"Late_blight":            "Late Blight",
	"Leaf_mold":              "Leaf Mold",
	"Yellow_leaf_curl_virus": "Yellow Leaf Curl Virus",
	"Mosaic_virus":           "Mosaic Virus",
	"Target_spot":            "Target Spot",
	"Spider_mites":           "Spider Mites",
	"Septoria_leaf_spot":     "Septoria Leaf Spot",
	"Healthy":                "Healthy",
}

// DisplayName maps a raw class label to the name shown to users.
// Labels outside the known set get underscores replaced and each word capitalized.
func DisplayName(original string) string {
	if name, ok := displayNames[original]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(original, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// DisplayClasses returns the display names of OriginalClasses, in the same order.
func DisplayClasses() []string {
	out := make([]string, len(OriginalClasses))
	for i, c := range OriginalClasses {
		out[i] = DisplayName(c)
	}
	return out
}

var (
	ErrModelNotLoaded   = errors.New("model not loaded")
	ErrInvalidImage     = errors.New("invalid image input")
	ErrImageTooSmall    = errors.New("image dimensions too small")
	ErrImageIncomplete  = errors.New("image not fully loaded")
	ErrInputSize        = errors.New("input tensor size mismatch")
	ErrOutputSize       = errors.New("output vector shorter than class list")
	ErrInvalidOutput    = errors.New("output vector contains non-finite values")
	ErrNoModelAvailable = errors.New("no model location could be loaded")
)

// ClassConfidence is one entry of a prediction listing.
type ClassConfidence struct {
	ClassName         string  `json:"class_name"`
	OriginalClassName string  `json:"original_class_name,omitempty"`
	Confidence        float32 `json:"confidence"`
}

// PredictionResult is the outcome of classifying one image.
type PredictionResult struct {
	ClassName          string            `json:"class_name"`
	OriginalClassName  string            `json:"original_class_name"`
	Confidence         float32           `json:"confidence"`
	AllPredictions     []ClassConfidence `json:"all_predictions"`
	GroupedPredictions []ClassConfidence `json:"grouped_predictions"`
	IsConfident        bool              `json:"is_confident"`
}

// UnknownResult is the result returned when a prediction cannot be trusted or made.
func UnknownResult(confidence float32) PredictionResult {
	return PredictionResult{
		ClassName:          UnknownClass,
		OriginalClassName:  UnknownClass,
		Confidence:         confidence,
		AllPredictions:     []ClassConfidence{},
		GroupedPredictions: []ClassConfidence{},
		IsConfident:        false,
	}
}

// PredictionRequest is a preprocessed input tensor, flattened.
type PredictionRequest struct {
	Image []float32 `json:"image"`
}

// SourceKind tells whether predictions come from the served model or the placeholder network.
type SourceKind string

const (
	SourceNone     SourceKind = "none"
	SourceModel    SourceKind = "model"
	SourceFallback SourceKind = "fallback"
)

// Source describes the network a Loader ended up with.
type Source struct {
	Kind     SourceKind `json:"kind"`
	Location string     `json:"location,omitempty"`
	Format   string     `json:"format,omitempty"`
}
