package numutil

import "math"

// ScrubNonFinite replaces, in place, NaN components with 0 and
// infinite components with the largest finite float64 of matching
// sign. Gradients coming back from an external simulation can contain
// non-finite entries; scrubbing happens before any clipping.
func ScrubNonFinite(x []float64) []float64 {
	for i, v := range x {
		switch {
		case math.IsNaN(v):
			x[i] = 0
		case math.IsInf(v, 1):
			x[i] = math.MaxFloat64
		case math.IsInf(v, -1):
			x[i] = -math.MaxFloat64
		}
	}
	return x
}

// ClipByValue clamps every component of the gradient to
// [-threshold, threshold] in place and returns it.
func ClipByValue(gradient []float64, threshold float64) []float64 {
	for i, v := range gradient {
		if v > threshold {
			gradient[i] = threshold
		} else if v < -threshold {
			gradient[i] = -threshold
		}
	}
	return gradient
}

// ClipByL2Norm rescales the gradient in place so that its L2 norm
// does not exceed the threshold, preserving direction. It reports
// whether clipping occurred so callers can log it.
func ClipByL2Norm(gradient []float64, threshold float64) ([]float64, bool) {
	norm := L2Norm(gradient, false)
	if norm <= threshold || math.IsInf(threshold, 1) {
		return gradient, false
	}
	scale := threshold / norm
	for i := range gradient {
		gradient[i] *= scale
	}
	return gradient, true
}
