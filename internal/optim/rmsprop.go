package optim

import "math"

// RMSPropConfig holds configuration for the RMSprop optimizer.
type RMSPropConfig struct {
	Config
	Beta float64 // Second-moment decay rate (default: 0.999)
	Eps  float64 // Term for numerical stability (default: 1e-8)
}

// NewRMSProp creates an RMSprop optimizer with bias-corrected
// per-coordinate scaling.
//
// Gradient transform:
//
//	v_t   = beta * v_{t-1} + (1-beta) * gradient²
//	v_hat = v_t / (1 - beta^t)
//	out   = gradient / (sqrt(v_hat) + eps)
func NewRMSProp(config RMSPropConfig) (*Optimizer, error) {
	if config.Beta == 0 {
		config.Beta = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	if config.Beta < 0 || config.Beta >= 1 {
		return nil, &ConfigError{Option: "Beta", Reason: "must be in [0, 1)"}
	}
	return newOptimizer(config.Config, &rmspropScheme{
		beta: config.Beta,
		eps:  config.Eps,
	})
}

type rmspropScheme struct {
	beta, eps float64
	t         int
	v         []float64
}

func (s *rmspropScheme) transform(gradient []float64) []float64 {
	if s.v == nil {
		s.v = make([]float64, len(gradient))
	}
	s.t++
	biasCorrection := 1.0 - math.Pow(s.beta, float64(s.t))

	out := make([]float64, len(gradient))
	for i, g := range gradient {
		s.v[i] = s.beta*s.v[i] + (1.0-s.beta)*g*g
		vHat := s.v[i] / biasCorrection
		out[i] = g / (math.Sqrt(vHat) + s.eps)
	}
	return out
}

func (s *rmspropScheme) reset() {
	s.v = nil
	s.t = 0
}
