// Package optim implements stochastic optimization algorithms for
// gradient-based parameter estimation under noisy gradients.
//
// This package provides:
//   - Optimizer: iterator-style optimization core with gradient clipping,
//     convergence detection and optional learning-rate decay
//   - Gradient schemes: SGD, Momentum, RMSProp, Adam, Adamax
//
// The optimizer is a lazy, resumable sequence. Each call to Next performs
// exactly one parameter update, so a caller can interleave several
// independent optimizers, inspect intermediate state, or stop early on an
// external condition such as an exhausted simulation budget.
//
// Example usage:
//
//	opt, err := optim.NewAdam(optim.AdamConfig{
//	    Config: optim.Config{
//	        LearningRate:         0.01,
//	        OptimizationType:     optim.Minimize,
//	        RelL1ChangeThreshold: 1e-5,
//	        RelL2ChangeThreshold: 1e-6,
//	        MaxIteration:         5000,
//	        InitialParams:        []float64{3.0},
//	    },
//	})
//	opt.SetGradientFunc(func(p []float64) []float64 {
//	    return []float64{2 * p[0]}
//	})
//
//	for opt.Next() {
//	    fmt.Printf("iter %d params %v\n", opt.Iteration(), opt.Params())
//	}
//	final, err := opt.Params(), opt.Err()
package optim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/calyx-uq/calyx/internal/numutil"
)

// ErrNumericalInstability is returned by Err when a parameter becomes
// NaN after an update. It indicates a divergent optimization; retrying
// with identical inputs would reproduce it, so the run is aborted.
var ErrNumericalInstability = errors.New("optimizer parameters contain NaN")

// ConfigError reports an invalid or contradictory optimizer setup.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("optim: invalid option %q: %s", e.Option, e.Reason)
}

// OptimizationType selects the sign of the parameter update.
type OptimizationType string

const (
	// Minimize descends the gradient (sign coefficient -1).
	Minimize OptimizationType = "min"
	// Maximize ascends the gradient (sign coefficient +1).
	Maximize OptimizationType = "max"
)

// GradientFunc maps the current parameter vector to a raw gradient
// vector of the same dimension. It may perform blocking simulation
// work; that latency is opaque to the optimizer.
type GradientFunc func(params []float64) []float64

// Config holds the hyperparameters common to all optimizer variants.
//
// Zero values are replaced with defaults at construction:
// ClipByValueThreshold and ClipByL2NormThreshold default to +Inf
// (no clipping), MaxIteration defaults to 1e6.
type Config struct {
	LearningRate          float64
	OptimizationType      OptimizationType // "min" or "max"
	RelL1ChangeThreshold  float64
	RelL2ChangeThreshold  float64
	ClipByValueThreshold  float64
	ClipByL2NormThreshold float64
	MaxIteration          int

	// InitialParams seeds the parameter vector. It may be left nil and
	// installed later via Reset, but Next fails until parameters exist.
	InitialParams []float64

	// LearningRateDecay optionally adjusts the learning rate before
	// each update. Nil means a constant learning rate.
	LearningRateDecay LearningRateDecay

	// Logger for clipping warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// scheme transforms the clipped raw gradient according to a specific
// stochastic optimization approach. Auxiliary state (moment buffers)
// is sized lazily on first use, once the parameter dimension is known.
type scheme interface {
	transform(gradient []float64) []float64
	reset()
}

// Optimizer is the iterator-style stochastic optimization core.
//
// It owns the parameter and gradient state exclusively. A single step
// (one call to Next) performs:
//
//  1. Raw gradient evaluation at the current parameters
//  2. Learning-rate decay (if configured)
//  3. Gradient clipping, by value then by L2 norm
//  4. Scheme-specific gradient transform
//  5. Parameter update: params += sign * lr * gradient
//  6. Relative L1/L2 change and convergence check
//
// Optimizer is not goroutine-safe.
type Optimizer struct {
	cfg    Config
	sign   float64
	scheme scheme
	log    *slog.Logger

	gradientFn   GradientFunc
	params       []float64
	lastGradient []float64
	learningRate float64
	iteration    int
	relL1Change  float64
	relL2Change  float64
	done         bool
	err          error
}

func newOptimizer(cfg Config, s scheme) (*Optimizer, error) {
	var sign float64
	switch cfg.OptimizationType {
	case Minimize:
		sign = -1
	case Maximize:
		sign = 1
	default:
		return nil, &ConfigError{
			Option: "OptimizationType",
			Reason: fmt.Sprintf("unknown optimization type %q, expected %q or %q",
				cfg.OptimizationType, Minimize, Maximize),
		}
	}
	if cfg.LearningRate <= 0 {
		return nil, &ConfigError{Option: "LearningRate", Reason: "must be positive"}
	}
	if cfg.ClipByValueThreshold == 0 {
		cfg.ClipByValueThreshold = math.Inf(1)
	}
	if cfg.ClipByL2NormThreshold == 0 {
		cfg.ClipByL2NormThreshold = math.Inf(1)
	}
	if cfg.MaxIteration == 0 {
		cfg.MaxIteration = 1_000_000
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &Optimizer{
		cfg:          cfg,
		sign:         sign,
		scheme:       s,
		log:          logger,
		learningRate: cfg.LearningRate,
	}
	if cfg.InitialParams != nil {
		o.params = slices.Clone(cfg.InitialParams)
	}
	return o, nil
}

// SetGradientFunc registers the caller-supplied gradient function.
func (o *Optimizer) SetGradientFunc(fn GradientFunc) {
	o.gradientFn = fn
}

// Next advances the optimization by one step. It returns false once
// the run is done or failed; requesting a further step after
// termination is a no-op, not an error. Check Err after the loop.
func (o *Optimizer) Next() bool {
	if o.done || o.err != nil {
		return false
	}
	if o.gradientFn == nil {
		o.err = &ConfigError{Option: "GradientFunc", Reason: "no gradient function set"}
		return false
	}
	if o.params == nil {
		o.err = &ConfigError{Option: "InitialParams", Reason: "no initial parameters set"}
		return false
	}

	oldParams := slices.Clone(o.params)

	gradient := o.gradientFn(o.params)
	if o.cfg.LearningRateDecay != nil {
		o.learningRate = o.cfg.LearningRateDecay.Apply(o.learningRate, o.params, gradient)
	}
	gradient = o.clipGradient(gradient)
	gradient = o.scheme.transform(gradient)
	o.lastGradient = gradient

	for i := range o.params {
		o.params[i] += o.sign * o.learningRate * gradient[i]
	}
	o.iteration++

	if numutil.HasNaN(o.params) {
		o.err = fmt.Errorf("iteration %d: %w", o.iteration, ErrNumericalInstability)
		return false
	}

	o.relL1Change = numutil.RelativeChange(oldParams, o.params, func(x []float64) float64 {
		return numutil.L1Norm(x, true)
	})
	o.relL2Change = numutil.RelativeChange(oldParams, o.params, func(x []float64) float64 {
		return numutil.L2Norm(x, true)
	})

	o.done = (o.relL1Change <= o.cfg.RelL1ChangeThreshold &&
		o.relL2Change <= o.cfg.RelL2ChangeThreshold) ||
		o.iteration >= o.cfg.MaxIteration
	return true
}

// Run drives the sequence to completion and returns the final
// parameter vector.
func (o *Optimizer) Run() ([]float64, error) {
	for o.Next() {
	}
	if o.err != nil {
		return nil, o.err
	}
	return o.Params(), nil
}

// Reset restarts the optimizer with a fresh parameter vector and
// clears iteration count, convergence state and scheme moment buffers.
func (o *Optimizer) Reset(params []float64) {
	o.params = slices.Clone(params)
	o.lastGradient = nil
	o.learningRate = o.cfg.LearningRate
	o.iteration = 0
	o.relL1Change = 0
	o.relL2Change = 0
	o.done = false
	o.err = nil
	o.scheme.reset()
}

// clipGradient scrubs non-finite entries, then clips by value, then
// rescales to the L2-norm threshold.
func (o *Optimizer) clipGradient(gradient []float64) []float64 {
	gradient = numutil.ScrubNonFinite(gradient)
	gradient = numutil.ClipByValue(gradient, o.cfg.ClipByValueThreshold)
	gradient, clipped := numutil.ClipByL2Norm(gradient, o.cfg.ClipByL2NormThreshold)
	if clipped {
		o.log.Warn("gradient clipped due to large norm",
			slog.Int("iteration", o.iteration),
			slog.Float64("threshold", o.cfg.ClipByL2NormThreshold))
	}
	return gradient
}

// Params returns a copy of the current parameter vector.
func (o *Optimizer) Params() []float64 {
	return slices.Clone(o.params)
}

// Gradient returns a copy of the last transformed gradient, or nil
// before the first step.
func (o *Optimizer) Gradient() []float64 {
	return slices.Clone(o.lastGradient)
}

// Iteration returns the number of completed steps.
func (o *Optimizer) Iteration() int { return o.iteration }

// Done reports whether the convergence criterion or the iteration
// limit has been reached.
func (o *Optimizer) Done() bool { return o.done }

// Err returns the terminal error of the run, if any.
func (o *Optimizer) Err() error { return o.err }

// RelL1Change returns the relative L1 parameter change of the last step.
func (o *Optimizer) RelL1Change() float64 { return o.relL1Change }

// RelL2Change returns the relative L2 parameter change of the last step.
func (o *Optimizer) RelL2Change() float64 { return o.relL2Change }

// LearningRate returns the current learning rate.
func (o *Optimizer) LearningRate() float64 { return o.learningRate }

// SetLearningRate overrides the current learning rate. Useful for
// external scheduling between steps.
func (o *Optimizer) SetLearningRate(lr float64) { o.learningRate = lr }
