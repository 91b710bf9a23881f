package bmfmc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/calyx-uq/calyx/internal/parallel"
)

// fixedMapping returns preset predictions; used to exercise the
// posterior computation in isolation.
type fixedMapping struct {
	mean []float64
	vari []float64
	cov  *mat.SymDense
}

func (m *fixedMapping) Fit(*mat.Dense, []float64) error { return nil }

func (m *fixedMapping) Predict(*mat.Dense) ([]float64, []float64, error) {
	return m.mean, m.vari, nil
}

func (m *fixedMapping) PredictFull(*mat.Dense) ([]float64, *mat.SymDense, error) {
	return m.mean, m.cov, nil
}

func varianceEngine(mapping *fixedMapping, par parallel.Config) *Engine {
	cfg := Config{
		FeaturesConfig: NoFeatures,
		SupportMin:     -3,
		SupportMax:     3,
		SupportPoints:  50,
		Parallel:       par,
	}
	cfg.applyDefaults()
	e := &Engine{
		cfg:     cfg,
		mapping: mapping,
		log:     cfg.logger(),
		support: linspace(cfg.SupportMin, cfg.SupportMax, cfg.SupportPoints),
		meanMC:  mapping.mean,
		varMC:   mapping.vari,
	}
	e.pyhfMean = e.computePosteriorMean()
	return e
}

func TestComputePosteriorMean_IntegratesToOne(t *testing.T) {
	n := 40
	mapping := &fixedMapping{mean: make([]float64, n), vari: make([]float64, n)}
	for i := range mapping.mean {
		mapping.mean[i] = -0.5 + float64(i)/float64(n)
		mapping.vari[i] = 0.01
	}

	e := varianceEngine(mapping, parallel.Config{})
	dx := e.support[1] - e.support[0]
	var integral float64
	for _, p := range e.pyhfMean {
		assert.GreaterOrEqual(t, p, 0.0)
		integral += p * dx
	}
	assert.InDelta(t, 1.0, integral, 0.02)
}

func TestComputePosteriorMean_NarrowKernelsResolvedOnGrid(t *testing.T) {
	// Predictive sigmas far below the grid spacing must not alias:
	// the mixture still has to integrate to one on the support.
	n := 60
	mapping := &fixedMapping{mean: make([]float64, n), vari: make([]float64, n)}
	for i := range mapping.mean {
		mapping.mean[i] = -1 + 2*float64(i)/float64(n-1)
		mapping.vari[i] = 1e-8
	}

	e := varianceEngine(mapping, parallel.Config{})
	dx := e.support[1] - e.support[0]
	var integral float64
	for _, p := range e.pyhfMean {
		integral += p * dx
	}
	assert.InDelta(t, 1.0, integral, 0.05)
}

func TestComputePosteriorMean_ZeroVarianceFloored(t *testing.T) {
	mapping := &fixedMapping{mean: []float64{0}, vari: []float64{0}}
	e := varianceEngine(mapping, parallel.Config{})
	for _, p := range e.pyhfMean {
		assert.False(t, math.IsNaN(p))
		assert.False(t, math.IsInf(p, 0))
	}
}

func TestComputePosteriorVariance_NegativeDeterminantClamped(t *testing.T) {
	// |cov| > sqrt(var1*var2) makes the 2x2 covariance indefinite; the
	// pair must be repaired, never propagated as NaN.
	cov := mat.NewSymDense(2, []float64{
		1, 1.5,
		1.5, 1,
	})
	mapping := &fixedMapping{mean: []float64{0, 0}, vari: []float64{1, 1}, cov: cov}

	e := varianceEngine(mapping, parallel.Config{})
	out, err := e.computePosteriorVariance()
	require.NoError(t, err)
	require.Len(t, out, len(e.support))
	for k, v := range out {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
		// The accumulated density contribution itself is non-negative.
		contribution := v + meanSqWeight*e.pyhfMean[k]*e.pyhfMean[k]
		assert.GreaterOrEqual(t, contribution, 0.0)
	}
}

func TestComputePosteriorVariance_SinglePoint(t *testing.T) {
	mapping := &fixedMapping{
		mean: []float64{0},
		vari: []float64{1},
		cov:  mat.NewSymDense(1, []float64{1}),
	}
	e := varianceEngine(mapping, parallel.Config{})

	var dataErr *DataError
	_, err := e.computePosteriorVariance()
	assert.ErrorAs(t, err, &dataErr)
}

func TestComputePosteriorVariance_ParallelMatchesSequential(t *testing.T) {
	n := 30
	mean := make([]float64, n)
	vari := make([]float64, n)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		mean[i] = math.Sin(float64(i))
		vari[i] = 0.2 + 0.01*float64(i)
		for j := i; j < n; j++ {
			cov.SetSym(i, j, 0.1*math.Exp(-0.5*float64((i-j)*(i-j))))
		}
		cov.SetSym(i, i, vari[i])
	}
	mapping := &fixedMapping{mean: mean, vari: vari, cov: cov}

	seq := varianceEngine(mapping, parallel.Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1})
	outSeq, err := seq.computePosteriorVariance()
	require.NoError(t, err)

	par := varianceEngine(mapping, parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})
	outPar, err := par.computePosteriorVariance()
	require.NoError(t, err)

	require.Len(t, outPar, len(outSeq))
	for k := range outSeq {
		assert.InDelta(t, outSeq[k], outPar[k], 1e-9)
	}
}

func TestComputePosteriorVariance_PairSpacing(t *testing.T) {
	n := 20
	mean := make([]float64, n)
	vari := make([]float64, n)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		mean[i] = float64(i) * 0.05
		vari[i] = 0.5
		cov.SetSym(i, i, 0.5)
	}
	mapping := &fixedMapping{mean: mean, vari: vari, cov: cov}

	e := varianceEngine(mapping, parallel.Config{})
	e.cfg.PairSpacing = 3
	out, err := e.computePosteriorVariance()
	require.NoError(t, err)
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
	}
}
