package gp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/calyx-uq/calyx/internal/gp"
)

func trainingSet(n int) (*mat.Dense, []float64) {
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := -1.5 + 3.0*float64(i)/float64(n-1)
		x.Set(i, 0, xi)
		y[i] = math.Sin(3 * xi)
	}
	return x, y
}

func TestNew_Validation(t *testing.T) {
	_, err := gp.New(gp.Hyperparams{LengthScale: -1})
	assert.Error(t, err)

	_, err = gp.New(gp.Hyperparams{SignalVariance: -0.5})
	assert.Error(t, err)

	_, err = gp.New(gp.Hyperparams{NoiseVariance: -1e-3})
	assert.Error(t, err)
}

func TestFit_DimensionMismatch(t *testing.T) {
	reg, err := gp.New(gp.Hyperparams{})
	require.NoError(t, err)

	err = reg.Fit(mat.NewDense(2, 1, []float64{0, 1}), []float64{1})
	assert.Error(t, err)
}

func TestPredict_InterpolatesTrainingPoints(t *testing.T) {
	x, y := trainingSet(12)

	reg, err := gp.New(gp.Hyperparams{})
	require.NoError(t, err)
	require.NoError(t, reg.Fit(x, y))

	mean, variance, err := reg.Predict(x)
	require.NoError(t, err)
	require.Len(t, mean, 12)
	require.Len(t, variance, 12)

	for i := range y {
		assert.InDelta(t, y[i], mean[i], 1e-3)
		assert.GreaterOrEqual(t, variance[i], 0.0)
		assert.Less(t, variance[i], 1e-3)
	}
}

func TestPredict_SmoothBetweenTrainingPoints(t *testing.T) {
	x, y := trainingSet(20)

	reg, err := gp.New(gp.Hyperparams{})
	require.NoError(t, err)
	require.NoError(t, reg.Fit(x, y))

	query := mat.NewDense(1, 1, []float64{0.4})
	mean, _, err := reg.Predict(query)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(3*0.4), mean[0], 0.05)
}

func TestPredictFull_MatchesDiagonal(t *testing.T) {
	x, y := trainingSet(10)

	reg, err := gp.New(gp.Hyperparams{})
	require.NoError(t, err)
	require.NoError(t, reg.Fit(x, y))

	query := mat.NewDense(5, 1, []float64{-1.2, -0.6, 0, 0.6, 1.2})
	mean, variance, err := reg.Predict(query)
	require.NoError(t, err)

	fullMean, cov, err := reg.PredictFull(query)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.InDelta(t, mean[i], fullMean[i], 1e-10)
		assert.InDelta(t, variance[i], cov.At(i, i), 1e-8)
	}
}

func TestPredict_BeforeFit(t *testing.T) {
	reg, err := gp.New(gp.Hyperparams{})
	require.NoError(t, err)

	_, _, err = reg.Predict(mat.NewDense(1, 1, []float64{0}))
	assert.Error(t, err)

	_, _, err = reg.PredictFull(mat.NewDense(1, 1, []float64{0}))
	assert.Error(t, err)
}
