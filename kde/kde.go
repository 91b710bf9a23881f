// Copyright 2025 Calyx UQ Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kde provides Gaussian kernel-density estimation with
// likelihood-based bandwidth selection. It satisfies the
// density-estimator contract of the bmfmc package.
package kde

import (
	"github.com/calyx-uq/calyx/internal/kde"
)

// Estimator selects kernel bandwidths and evaluates Gaussian
// kernel-density estimates.
type Estimator = kde.Estimator

// New creates an estimator with default settings.
func New() *Estimator {
	return kde.New()
}
