// Package scoring computes the arousal score from the aggregated snapshot.
package scoring

import (
	"math"

	"github.com/okian/biosense/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultHeartRateWeight = 0.4
	defaultGSRWeight       = 0.3
	defaultMotionWeight    = 0.2
	defaultEEGWeight       = 0.1

	defaultHRCenter    = 0.5
	defaultHRSteepness = 5.0

	restingHeartRate = 60.0
	heartRateSpan    = 40.0
	gsrCeiling       = 50.0
	gsrExponent      = 0.7
	motionCeiling    = 3.0
	eegCeiling       = 200.0
)

// order fixes the iteration order so results are deterministic.
var order = []model.MetricType{model.HeartRate, model.GSR, model.Motion, model.EEG}

// components maps each scored metric to the extraction of its [0,1] level
// from the snapshot. The bool is false when the metric is not known yet.
var components = map[model.MetricType]func(s *Scorer, snap model.Snapshot) (float64, bool){
	model.HeartRate: func(s *Scorer, snap model.Snapshot) (float64, bool) {
		if !snap.HeartRate.Known {
			return 0, false
		}
		x := clamp01((snap.HeartRate.Value - restingHeartRate) / heartRateSpan)
		return 1 / (1 + math.Exp(-s.hrSteepness*(x-s.hrCenter))), true
	},
	model.GSR: func(_ *Scorer, snap model.Snapshot) (float64, bool) {
		if !snap.GSR.Known {
			return 0, false
		}
		return math.Pow(clamp01(snap.GSR.Value/gsrCeiling), gsrExponent), true
	},
	model.Motion: func(_ *Scorer, snap model.Snapshot) (float64, bool) {
		if !snap.Motion.Known {
			return 0, false
		}
		return clamp01(snap.Motion.Value.Magnitude() / motionCeiling), true
	},
	model.EEG: func(_ *Scorer, snap model.Snapshot) (float64, bool) {
		if !snap.EEG.Known {
			return 0, false
		}
		return clamp01(math.Abs(snap.EEG.Value) / eegCeiling), true
	},
}

// Result contains the arousal score and the per-metric levels it was built
// from.
type Result struct {
	Score      float64
	Components map[model.MetricType]float64
	// Available lists the contributing metrics in scoring order.
	Available []model.MetricType
}

// Scorer turns a snapshot into a weighted arousal score in [0,1]. Weights
// renormalize over the metrics present, so a missing metric never pulls the
// score down. Scorer is immutable after construction.
type Scorer struct {
	weights     map[model.MetricType]float64
	hrCenter    float64
	hrSteepness float64
}

// New creates a Scorer with the default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: map[model.MetricType]float64{
			model.HeartRate: defaultHeartRateWeight,
			model.GSR:       defaultGSRWeight,
			model.Motion:    defaultMotionWeight,
			model.EEG:       defaultEEGWeight,
		},
		hrCenter:    defaultHRCenter,
		hrSteepness: defaultHRSteepness,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns a copy of the configured weights.
func (s *Scorer) Weights() map[model.MetricType]float64 {
	out := make(map[model.MetricType]float64, len(s.weights))
	for m, w := range s.weights {
		out[m] = w
	}
	return out
}

// Score computes the arousal score for snap.
func (s *Scorer) Score(snap model.Snapshot) Result {
	res := Result{Components: make(map[model.MetricType]float64, len(order))}
	var sum, total float64
	for _, m := range order {
		level, ok := components[m](s, snap)
		if !ok {
			continue
		}
		res.Components[m] = level
		res.Available = append(res.Available, m)
		w := s.weights[m]
		sum += w * level
		total += w
	}
	if total > 0 {
		res.Score = clamp01(sum / total)
	}
	return res
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
