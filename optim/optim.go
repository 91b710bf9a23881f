// Copyright 2025 Calyx UQ Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/calyx-uq/calyx/internal/optim"
)

// Optimizer is the iterator-style stochastic optimization core shared
// by all variants.
type Optimizer = optim.Optimizer

// Config holds the hyperparameters common to all optimizer variants.
type Config = optim.Config

// GradientFunc maps the current parameter vector to a raw gradient
// vector of the same dimension.
type GradientFunc = optim.GradientFunc

// OptimizationType selects the sign of the parameter update.
type OptimizationType = optim.OptimizationType

const (
	// Minimize descends the gradient.
	Minimize = optim.Minimize
	// Maximize ascends the gradient.
	Maximize = optim.Maximize
)

// ErrNumericalInstability is returned by Err when a parameter becomes
// NaN after an update.
var ErrNumericalInstability = optim.ErrNumericalInstability

// ConfigError reports an invalid or contradictory optimizer setup.
type ConfigError = optim.ConfigError

// SGD (Stochastic Gradient Descent)

// SGDConfig contains configuration for the plain SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a plain gradient-descent optimizer.
//
// Example:
//
//	opt, err := optim.NewSGD(optim.SGDConfig{
//	    Config: optim.Config{
//	        LearningRate:     0.01,
//	        OptimizationType: optim.Minimize,
//	        InitialParams:    start,
//	    },
//	})
func NewSGD(config SGDConfig) (*Optimizer, error) {
	return optim.NewSGD(config)
}

// MomentumConfig contains configuration for SGD with momentum.
type MomentumConfig = optim.MomentumConfig

// NewMomentum creates an SGD optimizer with velocity accumulation.
func NewMomentum(config MomentumConfig) (*Optimizer, error) {
	return optim.NewMomentum(config)
}

// Adam (Adaptive Moment Estimation)

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer.
//
// Example:
//
//	opt, err := optim.NewAdam(optim.AdamConfig{
//	    Config: optim.Config{LearningRate: 0.001, OptimizationType: optim.Minimize},
//	    Beta1:  0.9,
//	    Beta2:  0.999,
//	})
func NewAdam(config AdamConfig) (*Optimizer, error) {
	return optim.NewAdam(config)
}

// AdamaxConfig contains configuration for the Adamax optimizer.
type AdamaxConfig = optim.AdamaxConfig

// NewAdamax creates an Adamax optimizer, the infinity-norm variant of
// Adam.
func NewAdamax(config AdamaxConfig) (*Optimizer, error) {
	return optim.NewAdamax(config)
}

// RMSProp

// RMSPropConfig contains configuration for the RMSprop optimizer.
type RMSPropConfig = optim.RMSPropConfig

// NewRMSProp creates an RMSprop optimizer with bias-corrected
// per-coordinate scaling.
func NewRMSProp(config RMSPropConfig) (*Optimizer, error) {
	return optim.NewRMSProp(config)
}

// Learning-rate decay policies

// LearningRateDecay adjusts the learning rate before each parameter
// update.
type LearningRateDecay = optim.LearningRateDecay

// LogLinearDecay decays the learning rate as lr_0 / iter^slope.
type LogLinearDecay = optim.LogLinearDecay

// NewLogLinearDecay creates a log-linear decay policy.
func NewLogLinearDecay(slope float64) *LogLinearDecay {
	return optim.NewLogLinearDecay(slope)
}

// StepwiseDecay multiplies the learning rate by a fixed factor every
// interval iterations.
type StepwiseDecay = optim.StepwiseDecay

// NewStepwiseDecay creates a stepwise decay policy.
func NewStepwiseDecay(interval int, factor float64) *StepwiseDecay {
	return optim.NewStepwiseDecay(interval, factor)
}
