package bmfmc

import "gonum.org/v1/gonum/mat"

// ProbabilisticMapping is a trainable regression surrogate between
// low-fidelity features and high-fidelity outputs.
//
// The fitted internal state is owned by the mapping and must be
// read-only once Fit returns: the posterior-variance computation calls
// Predict concurrently from several goroutines.
type ProbabilisticMapping interface {
	// Fit trains the mapping on feature rows Z (n x f) and the
	// corresponding high-fidelity outputs (length n).
	Fit(z *mat.Dense, yHF []float64) error

	// Predict returns the posterior predictive mean and marginal
	// variance at every query row. This is the cheap path.
	Predict(z *mat.Dense) (mean, variance []float64, err error)

	// PredictFull additionally returns the full joint posterior
	// covariance between all query rows. This is the expensive path,
	// required only for the posterior-variance computation.
	PredictFull(z *mat.Dense) (mean []float64, cov *mat.SymDense, err error)
}

// HighFidelityModel evaluates the expensive simulation on a batch of
// input rows. It is invoked only when no high-fidelity reference data
// is available.
type HighFidelityModel interface {
	Evaluate(x *mat.Dense) ([]float64, error)
}

// DensityEstimator provides kernel-density reference estimates:
// bandwidth selection and pdf evaluation over a support grid.
type DensityEstimator interface {
	EstimateBandwidth(samples []float64, min, max float64) (float64, error)
	EstimatePDF(samples []float64, bandwidth float64, support []float64) ([]float64, error)
}

// SamplingSource provides read-only access to the persisted
// low-fidelity Monte-Carlo sample arrays and, if declared, the
// high-fidelity reference outputs.
type SamplingSource interface {
	Load() (*SamplingData, error)
}

// MemorySource is a SamplingSource over in-memory arrays.
type MemorySource struct {
	Data *SamplingData
	Err  error
}

func (s *MemorySource) Load() (*SamplingData, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Data, nil
}
