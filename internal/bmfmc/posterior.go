package bmfmc

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/calyx-uq/calyx/internal/parallel"
)

// Numerical conditioning floors for the pairwise bivariate Gaussian
// accumulation. A slightly negative determinant arises from surrogate
// approximation error in the joint covariance; it is repaired locally
// rather than surfaced as an error, mirroring the approximation
// tolerance of the statistical method.
const (
	detFloor        = 1e-6
	covShrinkFactor = 0.95
	maxExpArg       = 40
	sigmaFloor      = 1e-12
	meanSqWeight    = 0.9995
)

// computePosteriorMean accumulates, for every Monte-Carlo evaluation
// point i with predicted mean mᵢ and standard deviation σᵢ, the
// Gaussian density N(support; mᵢ, σᵢ) over the support grid and
// averages across all points. This is a Gaussian-mixture density
// estimate, O(n · |support|).
func (e *Engine) computePosteriorMean() []float64 {
	n := len(e.meanMC)
	out := make([]float64, len(e.support))

	// A kernel narrower than the grid spacing is invisible to the
	// Riemann sum over the support; floor sigma at the spacing so
	// every mixture component is resolvable.
	minSigma := sigmaFloor
	if len(e.support) > 1 {
		if h := e.support[1] - e.support[0]; h > minSigma {
			minSigma = h
		}
	}

	parallel.For(len(e.support), func(k int) {
		var sum float64
		for i := 0; i < n; i++ {
			sigma := math.Sqrt(e.varMC[i])
			if sigma < minSigma {
				sigma = minSigma
			}
			sum += distuv.Normal{Mu: e.meanMC[i], Sigma: sigma}.Prob(e.support[k])
		}
		out[k] = sum / float64(n)
	}, e.cfg.Parallel)

	return out
}

// computePosteriorVariance computes the posterior variance of the
// high-fidelity density estimate. For every unordered pair (i, j) of
// Monte-Carlo points it forms the 2x2 covariance from the marginal
// variances and the joint posterior cross-covariance, evaluates the
// bivariate normal density at the diagonal support pairs (s, s), and
// accumulates; the variance follows from the pairwise second moment
// minus the squared posterior mean. The pair loop is O(n²·|support|)
// and dominates the analysis; pairs are partitioned across workers
// with per-worker accumulators and a single final reduction.
func (e *Engine) computePosteriorVariance() ([]float64, error) {
	_, cov, err := e.mapping.PredictFull(e.zMC)
	if err != nil {
		return nil, fmt.Errorf("evaluating joint posterior covariance: %w", err)
	}

	n := len(e.meanMC)
	support := e.support
	means, vars := e.meanMC, e.varMC

	var detClamps, argClamps atomic.Int64

	grid, pairs := parallel.ReducePairs(n, e.cfg.PairSpacing, len(support),
		func(i, j int, grid []float64) {
			mean1, mean2 := means[i], means[j]
			var1, var2 := vars[i], vars[j]
			covariance := cov.At(i, j)

			detSigma := var1*var2 - covariance*covariance
			if detSigma < 0 {
				// Not positive semi-definite; restore validity.
				detSigma = detFloor
				covariance *= covShrinkFactor
				detClamps.Add(1)
			}

			logNorm := 0.5 * math.Log(4*math.Pi*math.Pi*detSigma)
			for k, s := range support {
				d1, d2 := s-mean1, s-mean2
				quad := (d1*d1*var2 - 2*d1*d2*covariance + d2*d2*var1) / detSigma
				arg := -0.5*quad - logNorm
				if arg > maxExpArg {
					arg = maxExpArg
					argClamps.Add(1)
				}
				grid[k] += math.Exp(arg)
			}
		}, e.cfg.Parallel)

	if pairs == 0 {
		return nil, &DataError{Reason: "posterior variance requires at least two Monte-Carlo points"}
	}

	if c := detClamps.Load(); c > 0 {
		e.log.Warn("covariance determinant clamped during variance computation",
			slog.Int64("pairs", c))
	}
	if c := argClamps.Load(); c > 0 {
		e.log.Warn("exponent arguments clamped during variance computation",
			slog.Int64("evaluations", c))
	}

	// Finalize once after all pairs are summed: second moment of the
	// pairwise mixture minus the weighted squared posterior mean.
	out := make([]float64, len(support))
	for k := range out {
		out[k] = grid[k]/float64(pairs) - meanSqWeight*e.pyhfMean[k]*e.pyhfMean[k]
	}
	return out, nil
}
