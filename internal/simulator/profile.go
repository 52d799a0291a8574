package simulator

import "github.com/okian/biosense/internal/domain/model"

// Profile drives the random walk of one metric. Each tick moves the value by
// a uniform step in [-Step, Step] plus Drift, clamped to [Min, Max]. Vector
// metrics walk each axis independently around Baseline on X, Y and Z.
type Profile struct {
	Baseline float64
	Step     float64
	Drift    float64
	Min      float64
	Max      float64
}

// DefaultProfiles returns resting-wearer profiles for the built-in metrics.
func DefaultProfiles() map[model.MetricType]Profile {
	return map[model.MetricType]Profile{
		model.HeartRate:   {Baseline: 72, Step: 2, Min: 50, Max: 150},
		model.GSR:         {Baseline: 5, Step: 0.4, Min: 0.5, Max: 40},
		model.EEG:         {Baseline: 0, Step: 15, Min: -150, Max: 150},
		model.Motion:      {Baseline: 0.3, Step: 0.1, Min: -2, Max: 2},
		model.Temperature: {Baseline: 36.6, Step: 0.02, Min: 35, Max: 38.5},
		model.Battery:     {Baseline: 100, Step: 0, Drift: -0.05, Min: 0, Max: 100},
	}
}

// Adapters returns the built-in device families the simulator and the
// process bootstrap register.
func Adapters() []model.AdapterDescriptor {
	return []model.AdapterDescriptor{
		{Type: "wristband", Metrics: []model.MetricType{model.HeartRate, model.GSR, model.Motion, model.Battery}},
		{Type: "headband", Metrics: []model.MetricType{model.EEG, model.Temperature, model.Battery}},
		{Type: "simulated", Metrics: model.BuiltinMetrics()},
	}
}
