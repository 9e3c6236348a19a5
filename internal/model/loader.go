package model

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Brownie44l1/plantdx-api/internal/logger"
)

// Loader owns the classification network: it finds and loads the served model,
// falls back to a placeholder network when that fails, and runs predictions.
// One Loader is created per process and reused for every prediction.
type Loader struct {
	candidates []string
	direct     []string
	threshold  float32
	seed       int64
	fetcher    *Fetcher
	open       Opener
	fallback   func(Description) (Network, error)
	log        logger.Logger

	// loadMu serializes Load and Close; mu guards the published state below.
	loadMu sync.Mutex
	mu     sync.Mutex
	net    Network
	desc   Description
	source Source
	loaded bool
}

type Option func(*Loader)

// WithCandidates sets the model description locations probed by Load, in order.
func WithCandidates(locations ...string) Option {
	return func(l *Loader) { l.candidates = locations }
}

// WithDirect sets model files Load tries without a description.
func WithDirect(locations ...string) Option {
	return func(l *Loader) { l.direct = locations }
}

func WithThreshold(threshold float32) Option {
	return func(l *Loader) { l.threshold = threshold }
}

func WithFetcher(f *Fetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

func WithOpener(open Opener) Option {
	return func(l *Loader) { l.open = open }
}

// WithFallback replaces the placeholder network constructor.
func WithFallback(fallback func(Description) (Network, error)) Option {
	return func(l *Loader) { l.fallback = fallback }
}

// WithSeed seeds the placeholder network's random weights.
func WithSeed(seed int64) Option {
	return func(l *Loader) { l.seed = seed }
}

func WithLogger(log logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		threshold: DefaultThreshold,
		fetcher:   NewFetcher(15 * time.Second),
		open:      NewOpener(RuntimeOptions{Threads: 1}),
		log:       logger.NewNop(),
		source:    Source{Kind: SourceNone},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fallback == nil {
		seed := l.seed
		l.fallback = func(desc Description) (Network, error) {
			return NewFallbackNetwork(desc, seed)
		}
	}
	return l
}

// Load brings up a network and warms it with one forward pass. It tries, in order,
// the first reachable description candidate, then each direct model file, then the
// placeholder network. It reports false only when not even the placeholder could be
// built; no error escapes.
func (l *Loader) Load(ctx context.Context) bool {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	if l.Loaded() {
		return true
	}

	fallbackDesc := DefaultDescription()
	fallback, err := l.fallback(fallbackDesc)
	if err != nil {
		l.log.Errorf(ctx, "Failed to create fallback model: %v", err)
		return false
	}

	net, desc, source, err := l.loadServed(ctx)
	if err != nil {
		l.log.Warnf(ctx, "Using fallback model: %v", err)
		net, desc, source = fallback, fallbackDesc, Source{Kind: SourceFallback}
	}

	if err := warmUp(net, desc); err != nil {
		if net == fallback {
			l.log.Errorf(ctx, "Fallback model warm-up failed: %v", err)
			fallback.Close()
			return false
		}
		l.log.Warnf(ctx, "Model warm-up failed, using fallback model: %v", err)
		net.Close()
		net, desc, source = fallback, fallbackDesc, Source{Kind: SourceFallback}
		if err := warmUp(net, desc); err != nil {
			l.log.Errorf(ctx, "Fallback model warm-up failed: %v", err)
			fallback.Close()
			return false
		}
	}

	if net != fallback {
		fallback.Close()
	}

	l.mu.Lock()
	l.net, l.desc, l.source, l.loaded = net, desc, source, true
	l.mu.Unlock()
	l.log.Infof(ctx, "Model ready: source=%s location=%s classes=%d", source.Kind, source.Location, len(desc.Classes))
	return true
}

func (l *Loader) loadServed(ctx context.Context) (Network, Description, Source, error) {
	var errs []error

	if location, ok := l.fetcher.Locate(ctx, l.candidates); ok {
		net, desc, err := l.loadDescribed(ctx, location)
		if err == nil {
			return net, desc, Source{Kind: SourceModel, Location: location, Format: desc.Format}, nil
		}
		l.log.Warnf(ctx, "Loading described model %s failed: %v", location, err)
		errs = append(errs, err)
	} else {
		errs = append(errs, fmt.Errorf("no model description found in %d candidates", len(l.candidates)))
	}

	for _, location := range l.direct {
		if !l.fetcher.Exists(ctx, location) {
			continue
		}
		net, desc, err := l.loadDirect(ctx, location)
		if err == nil {
			return net, desc, Source{Kind: SourceModel, Location: location, Format: desc.Format}, nil
		}
		l.log.Warnf(ctx, "Loading model file %s failed: %v", location, err)
		errs = append(errs, err)
	}

	errs = append(errs, ErrNoModelAvailable)
	return nil, Description{}, Source{}, errors.Join(errs...)
}

func (l *Loader) loadDescribed(ctx context.Context, location string) (Network, Description, error) {
	raw, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, Description{}, err
	}
	parsed, err := ParseDescription(raw)
	if err != nil {
		return nil, Description{}, err
	}

	desc, fixes := Repair(parsed)
	for _, fix := range fixes {
		l.log.Infof(ctx, "Model description %s repaired: %s", location, fix)
	}

	modelLocation := Resolve(location, desc.ModelFile)
	data, err := l.fetcher.Fetch(ctx, modelLocation)
	if err != nil {
		return nil, Description{}, err
	}

	net, err := l.open(desc, data)
	if err != nil {
		return nil, Description{}, err
	}
	return net, desc, nil
}

func (l *Loader) loadDirect(ctx context.Context, location string) (Network, Description, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, Description{}, err
	}

	desc, _ := Repair(Description{ModelFile: filepath.Base(location)})
	net, err := l.open(desc, data)
	if err != nil {
		return nil, Description{}, err
	}
	return net, desc, nil
}

func warmUp(net Network, desc Description) error {
	out, err := net.Run(make([]float32, desc.InputLen()))
	if err != nil {
		return err
	}
	if len(out) < len(desc.Classes) {
		return fmt.Errorf("%w: %d outputs for %d classes", ErrOutputSize, len(out), len(desc.Classes))
	}
	return nil
}

// Predict classifies img. Every failure, including an invalid image, yields the
// Unknown result; invalid images never reach the network.
func (l *Loader) Predict(ctx context.Context, img image.Image) PredictionResult {
	result, err := l.predict(img)
	if err != nil {
		l.log.Warnf(ctx, "Error predicting plant disease: %v", err)
		return UnknownResult(0)
	}
	return result
}

func (l *Loader) predict(img image.Image) (PredictionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.net == nil {
		return PredictionResult{}, ErrModelNotLoaded
	}
	if err := ValidateImage(img); err != nil {
		return PredictionResult{}, err
	}

	probs, err := l.net.Run(Preprocess(img, l.desc))
	if err != nil {
		return PredictionResult{}, err
	}
	return Classify(probs, l.desc.Classes, l.threshold)
}

// PredictTensor classifies an already preprocessed input tensor.
func (l *Loader) PredictTensor(input []float32) (PredictionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.net == nil {
		return PredictionResult{}, ErrModelNotLoaded
	}
	if want := l.desc.InputLen(); len(input) != want {
		return PredictionResult{}, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, want, len(input))
	}

	probs, err := l.net.Run(input)
	if err != nil {
		return PredictionResult{}, err
	}
	return Classify(probs, l.desc.Classes, l.threshold)
}

// Classify turns a probability vector into a PredictionResult. Below threshold the
// Unknown result carries the top confidence and empty listings.
func Classify(probs []float32, classes []string, threshold float32) (PredictionResult, error) {
	if len(classes) == 0 || len(probs) < len(classes) {
		return PredictionResult{}, fmt.Errorf("%w: %d outputs for %d classes", ErrOutputSize, len(probs), len(classes))
	}
	probs = probs[:len(classes)]
	for i, p := range probs {
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			return PredictionResult{}, fmt.Errorf("%w: %v at index %d", ErrInvalidOutput, p, i)
		}
	}

	maxIdx := 0
	for i, p := range probs {
		if p > probs[maxIdx] {
			maxIdx = i
		}
	}
	confidence := probs[maxIdx]

	if confidence < threshold {
		return UnknownResult(confidence), nil
	}

	all := make([]ClassConfidence, len(classes))
	grouped := make([]ClassConfidence, 0, len(classes))
	groupIdx := make(map[string]int, len(classes))

	for i, original := range classes {
		name := DisplayName(original)
		all[i] = ClassConfidence{ClassName: name, OriginalClassName: original, Confidence: probs[i]}

		if j, ok := groupIdx[name]; ok {
			grouped[j].Confidence += probs[i]
			continue
		}
		groupIdx[name] = len(grouped)
		grouped = append(grouped, ClassConfidence{ClassName: name, Confidence: probs[i]})
	}

	sortByConfidence(all)
	sortByConfidence(grouped)

	return PredictionResult{
		ClassName:          DisplayName(classes[maxIdx]),
		OriginalClassName:  classes[maxIdx],
		Confidence:         confidence,
		AllPredictions:     all,
		GroupedPredictions: grouped,
		IsConfident:        true,
	}, nil
}

func sortByConfidence(list []ClassConfidence) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Confidence > list[j].Confidence
	})
}

// Loaded reports whether Load has completed successfully.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *Loader) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// Description returns the repaired description of the active network.
func (l *Loader) Description() Description {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.desc
}

func (l *Loader) Close() error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.net == nil {
		return nil
	}
	err := l.net.Close()
	l.net = nil
	l.loaded = false
	l.source = Source{Kind: SourceNone}
	return err
}
