// Package filter smooths normalized samples per device and metric.
package filter

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithWindow sets how many recent samples are kept per device and metric.
func WithWindow(size int) Option {
	return func(f *Filter) {
		if size > 0 {
			f.window = size
		}
	}
}

// WithMinOutlierSamples sets how many buffered samples outlier rejection
// needs before it replaces the raw value.
func WithMinOutlierSamples(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.minOutlierSamples = n
		}
	}
}
