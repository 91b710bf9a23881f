package optim

import "slices"

// SGDConfig holds configuration for the plain stochastic gradient
// descent optimizer. The clipped gradient is applied unchanged.
type SGDConfig struct {
	Config
}

// NewSGD creates a plain gradient-descent optimizer.
//
// Update rule:
//
//	param = param + sign * lr * gradient
func NewSGD(config SGDConfig) (*Optimizer, error) {
	return newOptimizer(config.Config, &sgdScheme{})
}

// sgdScheme is the identity gradient transform.
type sgdScheme struct{}

func (*sgdScheme) transform(gradient []float64) []float64 { return gradient }

func (*sgdScheme) reset() {}

// MomentumConfig holds configuration for SGD with momentum.
type MomentumConfig struct {
	Config
	Momentum float64 // Momentum factor (default: 0.9, range: [0, 1))
}

// NewMomentum creates an SGD optimizer with momentum.
//
// Update rule:
//
//	velocity = momentum * velocity + gradient
//	param    = param + sign * lr * velocity
//
// Momentum accelerates descent in persistent directions and dampens
// oscillations from noisy gradients.
func NewMomentum(config MomentumConfig) (*Optimizer, error) {
	if config.Momentum == 0 {
		config.Momentum = 0.9
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		return nil, &ConfigError{Option: "Momentum", Reason: "must be in [0, 1)"}
	}
	return newOptimizer(config.Config, &momentumScheme{momentum: config.Momentum})
}

// momentumScheme accumulates a velocity vector. The buffer is sized on
// first use, once the parameter dimension is known.
type momentumScheme struct {
	momentum float64
	velocity []float64
}

func (s *momentumScheme) transform(gradient []float64) []float64 {
	if s.velocity == nil {
		s.velocity = make([]float64, len(gradient))
	}
	for i, g := range gradient {
		s.velocity[i] = s.momentum*s.velocity[i] + g
	}
	return slices.Clone(s.velocity)
}

func (s *momentumScheme) reset() { s.velocity = nil }
