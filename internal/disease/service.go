package disease

import (
	"context"
	"fmt"
	"image"
	"sync"

	"go.uber.org/atomic"

	"github.com/Brownie44l1/plantdx-api/internal/logger"
	"github.com/Brownie44l1/plantdx-api/internal/model"
)

// Predictor is the model capability the service drives. *model.Loader implements it.
type Predictor interface {
	Load(ctx context.Context) bool
	Predict(ctx context.Context, img image.Image) model.PredictionResult
}

// Mode is the service's inference state.
type Mode string

const (
	ModeUninitialized Mode = "uninitialized"
	ModeInference     Mode = "inference"
	ModeSimulation    Mode = "simulation"
)

// Diagnosis is a prediction enriched with the disease reference text.
type Diagnosis struct {
	model.PredictionResult
	DiseaseInfo Info   `json:"disease_info"`
	Mode        Mode   `json:"mode"`
	Error       string `json:"error,omitempty"`
}

// Service diagnoses plant images. It loads the model on first use and, if that
// fails, serves simulated diagnoses for the rest of its lifetime.
type Service struct {
	predictor Predictor
	catalog   *Catalog
	simulator *Simulator
	log       logger.Logger

	initMu      sync.Mutex
	initialized atomic.Bool
	simulation  atomic.Bool
}

type ServiceOption func(*Service)

func WithCatalog(c *Catalog) ServiceOption {
	return func(s *Service) { s.catalog = c }
}

func WithSimulator(sim *Simulator) ServiceOption {
	return func(s *Service) { s.simulator = sim }
}

func WithServiceLogger(log logger.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// ForceSimulation starts the service in simulation mode without touching the model.
func ForceSimulation() ServiceOption {
	return func(s *Service) {
		s.simulation.Store(true)
		s.initialized.Store(true)
	}
}

func NewService(predictor Predictor, opts ...ServiceOption) *Service {
	s := &Service{
		predictor: predictor,
		catalog:   DefaultCatalog(),
		simulator: NewSimulator(0),
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitModel loads the model once. It reports whether real inference is available;
// after a failure the service stays in simulation mode.
func (s *Service) InitModel(ctx context.Context) bool {
	if s.initialized.Load() {
		return !s.simulation.Load()
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized.Load() {
		return !s.simulation.Load()
	}

	loaded := s.loadPredictor(ctx)
	if !loaded {
		s.log.Warnf(ctx, "Model could not be loaded, switching to simulation mode")
	}
	s.simulation.Store(!loaded)
	s.initialized.Store(true)
	return loaded
}

func (s *Service) loadPredictor(ctx context.Context) (loaded bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf(ctx, "Model load panicked: %v", r)
			loaded = false
		}
	}()
	if s.predictor == nil {
		return false
	}
	return s.predictor.Load(ctx)
}

// Mode reports the current inference state.
func (s *Service) Mode() Mode {
	switch {
	case !s.initialized.Load():
		return ModeUninitialized
	case s.simulation.Load():
		return ModeSimulation
	default:
		return ModeInference
	}
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Diagnose classifies the image behind src and attaches the disease information.
// It never fails: any error yields an Unknown diagnosis carrying the error message.
func (s *Service) Diagnose(ctx context.Context, src Source) (d Diagnosis) {
	defer func() {
		if r := recover(); r != nil {
			d = s.failed(ctx, fmt.Errorf("diagnosis panicked: %v", r))
		}
	}()

	if src == nil {
		return s.failed(ctx, ErrInvalidInput)
	}
	ctx = logger.WithSource(ctx, src.Name())

	s.InitModel(ctx)

	img, err := src.Image(ctx)
	if err != nil {
		return s.failed(ctx, err)
	}

	var prediction model.PredictionResult
	mode := s.Mode()
	if mode == ModeSimulation {
		prediction = s.simulator.Predict(s.catalog.Classes())
	} else {
		prediction = s.predictor.Predict(ctx, img)
	}

	class := prediction.ClassName
	if class == "" {
		class = model.UnknownClass
	}
	s.log.Infof(ctx, "Diagnosed %s with confidence %.3f (mode=%s)", class, prediction.Confidence, mode)

	return Diagnosis{
		PredictionResult: prediction,
		DiseaseInfo:      s.catalog.Lookup(class),
		Mode:             mode,
	}
}

func (s *Service) failed(ctx context.Context, err error) Diagnosis {
	s.log.Errorf(ctx, "Diagnosis failed: %v", err)
	return Diagnosis{
		PredictionResult: model.UnknownResult(0),
		DiseaseInfo:      s.catalog.Lookup(model.UnknownClass),
		Mode:             s.Mode(),
		Error:            err.Error(),
	}
}
