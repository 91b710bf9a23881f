package optim

import "math"

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	Config
	Beta1 float64 // First-moment decay rate (default: 0.9)
	Beta2 float64 // Second-moment decay rate (default: 0.999)
	Eps   float64 // Term for numerical stability (default: 1e-8)
}

// NewAdam creates an Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Gradient transform:
//
//	m_t   = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t   = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	out   = m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
func NewAdam(config AdamConfig) (*Optimizer, error) {
	applyAdamDefaults(&config.Beta1, &config.Beta2, &config.Eps)
	if err := validateBetas(config.Beta1, config.Beta2); err != nil {
		return nil, err
	}
	return newOptimizer(config.Config, &adamScheme{
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Eps,
	})
}

// AdamaxConfig holds configuration for the Adamax optimizer.
type AdamaxConfig struct {
	Config
	Beta1 float64 // First-moment decay rate (default: 0.9)
	Beta2 float64 // Infinity-norm decay rate (default: 0.999)
	Eps   float64 // Term for numerical stability (default: 1e-8)
}

// NewAdamax creates an Adamax optimizer, the infinity-norm variant of
// Adam. The exponentially weighted infinity norm replaces the second
// raw moment, which makes the per-coordinate scale bound by the
// largest recent gradient magnitude.
//
// Gradient transform:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	u_t = max(beta2 * u_{t-1}, |gradient|)
//	out = m_t / ((1 - beta1^t) * (u_t + eps))
func NewAdamax(config AdamaxConfig) (*Optimizer, error) {
	applyAdamDefaults(&config.Beta1, &config.Beta2, &config.Eps)
	if err := validateBetas(config.Beta1, config.Beta2); err != nil {
		return nil, err
	}
	return newOptimizer(config.Config, &adamaxScheme{
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Eps,
	})
}

func applyAdamDefaults(beta1, beta2, eps *float64) {
	if *beta1 == 0 {
		*beta1 = 0.9
	}
	if *beta2 == 0 {
		*beta2 = 0.999
	}
	if *eps == 0 {
		*eps = 1e-8
	}
}

func validateBetas(beta1, beta2 float64) error {
	if beta1 < 0 || beta1 >= 1 {
		return &ConfigError{Option: "Beta1", Reason: "must be in [0, 1)"}
	}
	if beta2 < 0 || beta2 >= 1 {
		return &ConfigError{Option: "Beta2", Reason: "must be in [0, 1)"}
	}
	return nil
}

// adamScheme keeps first and second moment estimates, sized lazily on
// the first gradient.
type adamScheme struct {
	beta1, beta2, eps float64
	t                 int
	m, v              []float64
}

func (s *adamScheme) transform(gradient []float64) []float64 {
	if s.m == nil {
		s.m = make([]float64, len(gradient))
		s.v = make([]float64, len(gradient))
	}
	s.t++
	biasCorrection1 := 1.0 - math.Pow(s.beta1, float64(s.t))
	biasCorrection2 := 1.0 - math.Pow(s.beta2, float64(s.t))

	out := make([]float64, len(gradient))
	for i, g := range gradient {
		s.m[i] = s.beta1*s.m[i] + (1.0-s.beta1)*g
		s.v[i] = s.beta2*s.v[i] + (1.0-s.beta2)*g*g

		mHat := s.m[i] / biasCorrection1
		vHat := s.v[i] / biasCorrection2

		out[i] = mHat / (math.Sqrt(vHat) + s.eps)
	}
	return out
}

func (s *adamScheme) reset() {
	s.m, s.v = nil, nil
	s.t = 0
}

// adamaxScheme keeps the first moment and the exponentially weighted
// infinity norm.
type adamaxScheme struct {
	beta1, beta2, eps float64
	t                 int
	m, u              []float64
}

func (s *adamaxScheme) transform(gradient []float64) []float64 {
	if s.m == nil {
		s.m = make([]float64, len(gradient))
		s.u = make([]float64, len(gradient))
	}
	s.t++
	biasCorrection := 1.0 - math.Pow(s.beta1, float64(s.t))

	out := make([]float64, len(gradient))
	for i, g := range gradient {
		s.m[i] = s.beta1*s.m[i] + (1.0-s.beta1)*g
		s.u[i] = math.Max(s.beta2*s.u[i], math.Abs(g))

		out[i] = s.m[i] / (biasCorrection * (s.u[i] + s.eps))
	}
	return out
}

func (s *adamaxScheme) reset() {
	s.m, s.u = nil, nil
	s.t = 0
}
