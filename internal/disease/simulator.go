package disease

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Brownie44l1/plantdx-api/internal/model"
)

// Simulator produces plausible random predictions for when no model is available.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator seeds the simulator; seed 0 uses the current time.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Predict picks one of classes uniformly with confidence in [0.5, 0.9) and gives every
// other class a confidence in [0, 0.3). The result is always confident.
func (s *Simulator) Predict(classes []string) model.PredictionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	chosen := classes[s.rng.Intn(len(classes))]
	mainConfidence := float32(0.5 + s.rng.Float64()*0.4)

	grouped := make([]model.ClassConfidence, len(classes))
	for i, c := range classes {
		confidence := mainConfidence
		if c != chosen {
			confidence = float32(s.rng.Float64() * 0.3)
		}
		grouped[i] = model.ClassConfidence{ClassName: c, Confidence: confidence}
	}
	sort.SliceStable(grouped, func(i, j int) bool {
		return grouped[i].Confidence > grouped[j].Confidence
	})

	all := make([]model.ClassConfidence, len(grouped))
	for i, g := range grouped {
		all[i] = model.ClassConfidence{
			ClassName:         g.ClassName,
			OriginalClassName: "Sample " + g.ClassName,
			Confidence:        g.Confidence,
		}
	}

	return model.PredictionResult{
		ClassName:          chosen,
		OriginalClassName:  "Sample " + chosen,
		Confidence:         mainConfidence,
		AllPredictions:     all,
		GroupedPredictions: grouped,
		IsConfident:        true,
	}
}
