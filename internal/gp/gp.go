// Package gp provides a Gaussian-process regression surrogate with a
// squared-exponential kernel. It implements the probabilistic-mapping
// contract consumed by the BMFMC engine: posterior mean and marginal
// variance for the cheap path, the full joint posterior covariance for
// the expensive path.
package gp

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Hyperparams holds the kernel and noise hyperparameters.
type Hyperparams struct {
	// LengthScale of the squared-exponential kernel. If zero, a median
	// pairwise-distance heuristic is applied at fit time.
	LengthScale float64
	// SignalVariance scales the kernel (default: 1).
	SignalVariance float64
	// NoiseVariance is added to the kernel diagonal for numerical
	// stability and observation noise (default: 1e-6).
	NoiseVariance float64
}

// Validate checks the hyperparameters for consistency.
func (h *Hyperparams) Validate() error {
	if h.LengthScale < 0 {
		return errors.New("gp: length scale must be non-negative")
	}
	if h.SignalVariance < 0 {
		return errors.New("gp: signal variance must be non-negative")
	}
	if h.NoiseVariance < 0 {
		return errors.New("gp: noise variance must be non-negative")
	}
	return nil
}

func (h *Hyperparams) applyDefaults() {
	if h.SignalVariance == 0 {
		h.SignalVariance = 1
	}
	if h.NoiseVariance == 0 {
		h.NoiseVariance = 1e-6
	}
}

// Regressor is a Gaussian-process regression model. The fitted state
// (training inputs, Cholesky factor, weight vector) is written once by
// Fit and read-only afterwards, so concurrent Predict calls are safe.
type Regressor struct {
	hp Hyperparams

	mu     sync.Mutex // guards Fit against concurrent refits
	fitted bool

	xTrain      *mat.Dense
	yMean       float64
	chol        mat.Cholesky
	alpha       *mat.VecDense
	lengthScale float64
}

// New creates a GP regressor with the given hyperparameters.
func New(hp Hyperparams) (*Regressor, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	hp.applyDefaults()
	return &Regressor{hp: hp}, nil
}

// Fit trains the regressor on feature rows x (n x d) and targets y
// (length n). The targets are centered internally; the mean is added
// back on prediction.
func (g *Regressor) Fit(x *mat.Dense, y []float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows, _ := x.Dims()
	if rows == 0 || len(y) != rows {
		return fmt.Errorf("gp: %d feature rows but %d targets", rows, len(y))
	}

	g.xTrain = mat.DenseCopyOf(x)

	g.lengthScale = g.hp.LengthScale
	if g.lengthScale == 0 {
		g.lengthScale = medianHeuristic(g.xTrain)
	}

	var meanY float64
	for _, v := range y {
		meanY += v
	}
	meanY /= float64(rows)
	g.yMean = meanY

	k := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			v := g.kernel(g.xTrain.RawRowView(i), g.xTrain.RawRowView(j))
			if i == j {
				v += g.hp.NoiseVariance
			}
			k.SetSym(i, j, v)
		}
	}

	if ok := g.chol.Factorize(k); !ok {
		return errors.New("gp: kernel matrix is not positive definite")
	}

	centered := mat.NewVecDense(rows, nil)
	for i, v := range y {
		centered.SetVec(i, v-meanY)
	}
	g.alpha = mat.NewVecDense(rows, nil)
	if err := g.chol.SolveVecTo(g.alpha, centered); err != nil {
		return fmt.Errorf("gp: solving for weights: %w", err)
	}

	g.fitted = true
	return nil
}

// Predict returns the posterior mean and marginal variance at every
// query row.
func (g *Regressor) Predict(x *mat.Dense) (mean, variance []float64, err error) {
	if !g.fitted {
		return nil, nil, errors.New("gp: model is not fitted")
	}
	n, _ := x.Dims()
	trainRows, _ := g.xTrain.Dims()

	mean = make([]float64, n)
	variance = make([]float64, n)

	kStar := mat.NewVecDense(trainRows, nil)
	v := mat.NewVecDense(trainRows, nil)
	for i := 0; i < n; i++ {
		query := x.RawRowView(i)
		for t := 0; t < trainRows; t++ {
			kStar.SetVec(t, g.kernel(query, g.xTrain.RawRowView(t)))
		}
		mean[i] = g.yMean + mat.Dot(kStar, g.alpha)

		if err := g.chol.SolveVecTo(v, kStar); err != nil {
			return nil, nil, fmt.Errorf("gp: solving for variance: %w", err)
		}
		variance[i] = g.hp.SignalVariance + g.hp.NoiseVariance - mat.Dot(kStar, v)
		if variance[i] < 0 {
			variance[i] = 0
		}
	}
	return mean, variance, nil
}

// PredictFull returns the posterior mean and the full joint posterior
// covariance between all query rows. This is the expensive path used
// by the posterior-variance computation; n query rows cost O(n²)
// memory for the covariance alone.
func (g *Regressor) PredictFull(x *mat.Dense) ([]float64, *mat.SymDense, error) {
	if !g.fitted {
		return nil, nil, errors.New("gp: model is not fitted")
	}
	n, _ := x.Dims()
	trainRows, _ := g.xTrain.Dims()

	// Cross-kernel K* (n x m) between queries and training rows.
	kStar := mat.NewDense(n, trainRows, nil)
	for i := 0; i < n; i++ {
		for t := 0; t < trainRows; t++ {
			kStar.Set(i, t, g.kernel(x.RawRowView(i), g.xTrain.RawRowView(t)))
		}
	}

	mean := make([]float64, n)
	for i := 0; i < n; i++ {
		var dot float64
		row := kStar.RawRowView(i)
		for t := 0; t < trainRows; t++ {
			dot += row[t] * g.alpha.AtVec(t)
		}
		mean[i] = g.yMean + dot
	}

	// V = K⁻¹ K*ᵀ, cov = K** - K* V.
	v := mat.NewDense(trainRows, n, nil)
	if err := g.chol.SolveTo(v, kStar.T()); err != nil {
		return nil, nil, fmt.Errorf("gp: solving for covariance: %w", err)
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			prior := g.kernel(x.RawRowView(i), x.RawRowView(j))
			if i == j {
				prior += g.hp.NoiseVariance
			}
			var reduction float64
			row := kStar.RawRowView(i)
			for t := 0; t < trainRows; t++ {
				reduction += row[t] * v.At(t, j)
			}
			cov.SetSym(i, j, prior-reduction)
		}
	}
	return mean, cov, nil
}

// kernel is the squared-exponential covariance between two points.
func (g *Regressor) kernel(a, b []float64) float64 {
	var sq float64
	for i := range a {
		d := a[i] - b[i]
		sq += d * d
	}
	return g.hp.SignalVariance * math.Exp(-0.5*sq/(g.lengthScale*g.lengthScale))
}

// medianHeuristic picks a length scale as the median pairwise
// euclidean distance between training rows, a common default when no
// scale is configured. Falls back to 1 for degenerate inputs.
func medianHeuristic(x *mat.Dense) float64 {
	rows, _ := x.Dims()
	var dists []float64
	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			var sq float64
			a, b := x.RawRowView(i), x.RawRowView(j)
			for k := range a {
				d := a[k] - b[k]
				sq += d * d
			}
			if sq > 0 {
				dists = append(dists, math.Sqrt(sq))
			}
		}
	}
	if len(dists) == 0 {
		return 1
	}
	sort.Float64s(dists)
	return dists[len(dists)/2]
}
