// Copyright 2025 Calyx UQ Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides iterator-style stochastic optimizers for
// simulation-based gradients.
//
// # Overview
//
// This package contains:
//   - SGD: plain stochastic gradient descent
//   - Momentum: SGD with velocity accumulation
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Adamax: the infinity-norm variant of Adam
//   - RMSProp: bias-corrected per-coordinate gradient scaling
//   - LearningRateDecay policies (log-linear, stepwise)
//
// # Basic Usage
//
//	import "github.com/calyx-uq/calyx/optim"
//
//	func main() {
//	    opt, err := optim.NewAdam(optim.AdamConfig{
//	        Config: optim.Config{
//	            LearningRate:         0.01,
//	            OptimizationType:     optim.Minimize,
//	            RelL1ChangeThreshold: 1e-6,
//	            RelL2ChangeThreshold: 1e-8,
//	            MaxIteration:         10_000,
//	            InitialParams:        []float64{3.0},
//	        },
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    opt.SetGradientFunc(func(p []float64) []float64 {
//	        return []float64{2 * p[0]} // d/dx x²
//	    })
//
//	    // Iterate step by step...
//	    for opt.Next() {
//	        fmt.Println(opt.Iteration(), opt.Params())
//	    }
//	    // ...or run to convergence in one call.
//	    params, err := opt.Run()
//
// # Convergence
//
// The optimizer stops when both the relative L1 and L2 parameter
// changes drop below their thresholds, or when MaxIteration is
// reached. A NaN parameter aborts the run with
// ErrNumericalInstability.
//
// # Gradient Clipping
//
// Raw gradients are conditioned before each update: non-finite
// components are scrubbed, then values are clipped element-wise by
// ClipByValueThreshold, then the whole vector is rescaled to
// ClipByL2NormThreshold. Both thresholds default to +Inf (no
// clipping).
package optim
