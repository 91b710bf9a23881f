// Package numutil provides the small numeric helpers shared by the
// stochastic optimizers and the BMFMC engine: vector norms, relative
// parameter change, gradient clipping and data rescaling.
package numutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// relChangeEps guards the denominator of RelativeChange against
// all-zero reference vectors.
const relChangeEps = 1e-16

// Norm computes a vector norm. It is the function type consumed by
// RelativeChange so that L1 and L2 based convergence criteria share
// one implementation.
type Norm func(x []float64) float64

// L1Norm returns the L1 norm of x. If averaged is true the sum of
// absolute values is divided by the vector length, which makes the
// convergence thresholds independent of the parameter dimension.
func L1Norm(x []float64, averaged bool) float64 {
	norm := floats.Norm(x, 1)
	if averaged {
		norm /= float64(len(x))
	}
	return norm
}

// L2Norm returns the L2 norm of x. If averaged is true the squared
// sum is divided by the vector length before the root is taken.
func L2Norm(x []float64, averaged bool) float64 {
	if averaged {
		var sum float64
		for _, v := range x {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(x)))
	}
	return floats.Norm(x, 2)
}

// RelativeChange computes norm(old-new)/norm(old) for the supplied
// norm. The denominator is floored to avoid division by zero when the
// reference vector vanishes.
func RelativeChange(oldValues, newValues []float64, norm Norm) float64 {
	increment := make([]float64, len(oldValues))
	floats.SubTo(increment, oldValues, newValues)
	return norm(increment) / (norm(oldValues) + relChangeEps)
}

// HasNaN reports whether any component of x is NaN.
func HasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
