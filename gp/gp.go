// Copyright 2025 Calyx UQ Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gp provides a Gaussian-process regression surrogate with a
// squared-exponential kernel. It satisfies the probabilistic-mapping
// contract of the bmfmc package.
package gp

import (
	"github.com/calyx-uq/calyx/internal/gp"
)

// Hyperparams holds the kernel and noise hyperparameters.
type Hyperparams = gp.Hyperparams

// Regressor is a Gaussian-process regression model.
type Regressor = gp.Regressor

// New creates a GP regressor with the given hyperparameters. Zero
// values select defaults: unit signal variance, 1e-6 noise variance
// and a median-distance length-scale heuristic at fit time.
func New(hp Hyperparams) (*Regressor, error) {
	return gp.New(hp)
}
