package kde_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyx-uq/calyx/internal/kde"
)

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}

func TestEstimateBandwidth_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic seed for reproducible tests
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = rng.NormFloat64()
	}

	est := kde.New()
	bw, err := est.EstimateBandwidth(samples, -4, 4)
	require.NoError(t, err)

	span := 8.0
	assert.GreaterOrEqual(t, bw, span/200)
	assert.LessOrEqual(t, bw, span/5)
}

func TestEstimateBandwidth_Errors(t *testing.T) {
	est := kde.New()

	_, err := est.EstimateBandwidth([]float64{1.0}, 0, 1)
	assert.Error(t, err)

	_, err = est.EstimateBandwidth([]float64{1, 2}, 3, 3)
	assert.Error(t, err)
}

func TestEstimatePDF_IntegratesToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic seed for reproducible tests
	samples := make([]float64, 500)
	for i := range samples {
		samples[i] = rng.NormFloat64()
	}

	est := kde.New()
	bw, err := est.EstimateBandwidth(samples, -4, 4)
	require.NoError(t, err)

	support := linspace(-6, 6, 400)
	pdf, err := est.EstimatePDF(samples, bw, support)
	require.NoError(t, err)

	var integral float64
	dx := support[1] - support[0]
	for _, p := range pdf {
		assert.GreaterOrEqual(t, p, 0.0)
		integral += p * dx
	}
	assert.InDelta(t, 1.0, integral, 0.02)
}

func TestEstimatePDF_RecoversNormalShape(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) //nolint:gosec // deterministic seed for reproducible tests
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = rng.NormFloat64()
	}

	est := kde.New()
	bw, err := est.EstimateBandwidth(samples, -4, 4)
	require.NoError(t, err)

	support := linspace(-3, 3, 200)
	pdf, err := est.EstimatePDF(samples, bw, support)
	require.NoError(t, err)

	// Mode of a standard normal sits at zero.
	argmax := 0
	for k, p := range pdf {
		if p > pdf[argmax] {
			argmax = k
		}
	}
	assert.InDelta(t, 0.0, support[argmax], 0.25)

	// Peak density near 1/sqrt(2*pi).
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), pdf[argmax], 0.05)
}

func TestEstimatePDF_Errors(t *testing.T) {
	est := kde.New()

	_, err := est.EstimatePDF(nil, 0.1, []float64{0})
	assert.Error(t, err)

	_, err = est.EstimatePDF([]float64{1, 2}, 0, []float64{0})
	assert.Error(t, err)
}
