package specdex

import "go.uber.org/zap"

type settings struct {
	threshold float64
	logger    *zap.Logger
}

// Option configures an Engine at construction time.
type Option func(*settings)

// WithFuzzyThreshold overrides the minimum fuzzy similarity (default 0.6)
// a product must reach against a text query. Values outside (0, 1] are
// ignored.
func WithFuzzyThreshold(t float64) Option {
	return func(s *settings) {
		if t > 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithLogger attaches a logger for index-build and search diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
