// Package bmfmc implements the Bayesian multi-fidelity Monte-Carlo
// statistical engine.
//
// Given cheap low-fidelity Monte-Carlo samples and a small
// high-fidelity training subset, the engine builds a probabilistic
// regression mapping from (optionally feature-augmented) low-fidelity
// outputs to high-fidelity outputs and computes the posterior
// predictive density of the high-fidelity output over a fixed support
// grid: its mean always, its variance on request via a pairwise
// bivariate-normal accumulation over all Monte-Carlo evaluation points.
//
// The engine is driven through a one-way state machine:
//
//	Unloaded -> DataLoaded -> TrainingDataResolved ->
//	ApproximationBuilt -> StatisticsComputed
//
// Rebuilding with different features re-enters the pipeline at
// SetFeatureStrategy + BuildApproximation, overwriting downstream
// derived state.
//
// Collaborators (the regression mapping, the optional high-fidelity
// model, the sampling-data source and the kernel-density estimator)
// are injected at construction.
package bmfmc

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// State identifies the engine's position in its one-way pipeline.
type State int

const (
	StateUnloaded State = iota
	StateDataLoaded
	StateTrainingDataResolved
	StateApproximationBuilt
	StateStatisticsComputed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateDataLoaded:
		return "data_loaded"
	case StateTrainingDataResolved:
		return "training_data_resolved"
	case StateApproximationBuilt:
		return "approximation_built"
	case StateStatisticsComputed:
		return "statistics_computed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Results gathers the outputs of a full analysis run.
type Results struct {
	// Support is the fixed output grid the densities are evaluated on.
	Support []float64
	// PyHFMean is the posterior mean estimate of the high-fidelity
	// output density over Support.
	PyHFMean []float64
	// PyHFVar is the posterior variance of the density estimate; nil
	// unless PredictiveVar was set.
	PyHFVar []float64

	// PyHFMeanRef / PyHFVarRef repeat the analysis without informative
	// features for comparison; nil unless NoFeaturesComparison was set.
	PyHFMeanRef []float64
	PyHFVarRef  []float64

	// PyLFMC and PyHFMC are kernel-density reference estimates of the
	// low-fidelity output and (if benchmark data exists) the
	// high-fidelity output.
	PyLFMC []float64
	PyHFMC []float64

	// MeanMC and VarMC are the mapping's posterior mean and variance
	// at every Monte-Carlo feature row.
	MeanMC []float64
	VarMC  []float64

	// Training set actually used for the mapping, and the full
	// Monte-Carlo feature matrix it was evaluated on.
	XTrain   [][]float64
	ZTrain   [][]float64
	ZMC      [][]float64
	YHFTrain []float64
}

// Engine orchestrates feature construction, surrogate training and
// posterior output-density computation. It owns all derived arrays;
// the probabilistic mapping owns its fitted state, which the engine
// references but never copies.
//
// Engine methods are not goroutine-safe; parallelism is internal to
// the posterior-variance computation.
type Engine struct {
	cfg     Config
	mapping ProbabilisticMapping
	source  SamplingSource
	hfModel HighFidelityModel
	density DensityEstimator
	log     *slog.Logger

	state State

	data    *SamplingData
	support []float64

	trainingIndices []int
	xTrain          *mat.Dense
	yLFTrain        *mat.Dense
	yHFTrain        []float64

	gammasExtMC *mat.Dense
	zTrain      *mat.Dense
	zMC         *mat.Dense

	meanMC     []float64
	varMC      []float64
	fMeanTrain []float64

	pyhfMean []float64
	pyhfVar  []float64
	pylfMC   []float64
	pyhfMC   []float64
}

// NewEngine validates the configuration and wires the collaborators.
// The mapping and source are required; hfModel and density may be nil
// (the latter disables the kernel-density reference estimates).
func NewEngine(cfg Config, mapping ProbabilisticMapping, source SamplingSource,
	hfModel HighFidelityModel, density DensityEstimator) (*Engine, error) {

	if mapping == nil {
		return nil, &ConfigError{Option: "ProbabilisticMapping", Reason: "must not be nil"}
	}
	if source == nil {
		return nil, &ConfigError{Option: "SamplingSource", Reason: "must not be nil"}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Engine{
		cfg:     cfg,
		mapping: mapping,
		source:  source,
		hfModel: hfModel,
		density: density,
		log:     cfg.logger(),
	}, nil
}

// State returns the engine's current pipeline state.
func (e *Engine) State() State { return e.state }

// Support returns the output support grid; nil before data is loaded.
func (e *Engine) Support() []float64 { return e.support }

// LoadSamplingData ingests the low-fidelity Monte-Carlo arrays and
// optional random-field eigendecomposition metadata from the sampling
// source. It fails with a MissingDataError if declared high-fidelity
// reference data is unavailable.
func (e *Engine) LoadSamplingData() error {
	if e.state != StateUnloaded {
		return e.stateError("LoadSamplingData", StateUnloaded)
	}
	data, err := e.source.Load()
	if err != nil {
		return fmt.Errorf("loading sampling data: %w", err)
	}
	if err := data.validate(); err != nil {
		return err
	}
	e.data = data
	e.support = linspace(e.cfg.SupportMin, e.cfg.SupportMax, e.cfg.SupportPoints)
	e.state = StateDataLoaded

	rows, dims := data.XMC.Dims()
	_, numLF := data.YLFMC.Dims()
	e.log.Info("sampling data loaded",
		slog.Int("samples", rows),
		slog.Int("input_dims", dims),
		slog.Int("lf_models", numLF),
		slog.Bool("hf_reference", data.YHFMC != nil))
	return nil
}

// SetTrainingIndices selects the training subset as row indices into
// the Monte-Carlo input set. The indices are chosen externally (for
// example by a diverse-subset iterator).
func (e *Engine) SetTrainingIndices(indices []int) error {
	if e.state < StateDataLoaded {
		return e.stateError("SetTrainingIndices", StateDataLoaded)
	}
	if len(indices) == 0 {
		return &ConfigError{Option: "TrainingIndices", Reason: "must not be empty"}
	}
	rows, _ := e.data.XMC.Dims()
	for _, idx := range indices {
		if idx < 0 || idx >= rows {
			return &DataError{Reason: fmt.Sprintf("training index %d out of range [0, %d)", idx, rows)}
		}
	}
	e.trainingIndices = append([]int(nil), indices...)
	e.xTrain = selectRows(e.data.XMC, indices)
	e.yLFTrain = selectRows(e.data.YLFMC, indices)
	e.invalidateDerived()
	return nil
}

// SetTrainingInputs selects the training subset by input rows. Every
// row must be an exact row match within the Monte-Carlo input set;
// a row without a match fails with a DataError.
func (e *Engine) SetTrainingInputs(x *mat.Dense) error {
	if e.state < StateDataLoaded {
		return e.stateError("SetTrainingInputs", StateDataLoaded)
	}
	rows, _ := x.Dims()
	indices := make([]int, rows)
	for i := 0; i < rows; i++ {
		idx := matchRow(e.data.XMC, x.RawRowView(i))
		if idx < 0 {
			return &DataError{Reason: fmt.Sprintf(
				"training input row %d has no exact match in the Monte-Carlo input set", i)}
		}
		indices[i] = idx
	}
	return e.SetTrainingIndices(indices)
}

// resolveHFTrainingData obtains the high-fidelity outputs for the
// training inputs: by direct simulation if a high-fidelity model is
// wired and no reference data exists, or by indexing the reference
// outputs through the exact row match otherwise. Exactly one of the
// two sources must be available.
func (e *Engine) resolveHFTrainingData() error {
	if e.xTrain == nil {
		return &ConfigError{Option: "TrainingIndices", Reason: "training inputs not set"}
	}
	if e.yHFTrain != nil {
		// Already resolved for the current training subset; rebuilds
		// must not repeat the high-fidelity simulations.
		e.state = StateTrainingDataResolved
		return nil
	}

	switch {
	case e.hfModel != nil && e.data.YHFMC == nil:
		e.log.Info("starting high-fidelity simulations for training data",
			slog.Int("batch", len(e.trainingIndices)))
		yHF, err := e.hfModel.Evaluate(e.xTrain)
		if err != nil {
			return fmt.Errorf("evaluating high-fidelity model: %w", err)
		}
		if len(yHF) != len(e.trainingIndices) {
			return &DataError{Reason: fmt.Sprintf(
				"high-fidelity model returned %d outputs for %d inputs", len(yHF), len(e.trainingIndices))}
		}
		e.yHFTrain = yHF

	case e.data.YHFMC != nil && e.hfModel == nil:
		e.yHFTrain = make([]float64, len(e.trainingIndices))
		for i, idx := range e.trainingIndices {
			e.yHFTrain[i] = e.data.YHFMC[idx]
		}

	default:
		return &ConfigError{
			Option: "HighFidelityModel",
			Reason: "provide either high-fidelity reference data or a high-fidelity model, not both and not neither",
		}
	}

	e.state = StateTrainingDataResolved
	return nil
}

// BuildApproximation resolves the high-fidelity training data, applies
// the configured feature strategy and trains the regression mapping on
// (Z_train, Y_HF_train). The mapping is then evaluated over all
// Monte-Carlo feature rows.
func (e *Engine) BuildApproximation() error {
	if e.state < StateDataLoaded {
		return e.stateError("BuildApproximation", StateDataLoaded)
	}
	if err := e.resolveHFTrainingData(); err != nil {
		return err
	}
	if err := e.SetFeatureStrategy(); err != nil {
		return err
	}
	return e.fitAndEvaluate()
}

func (e *Engine) fitAndEvaluate() error {
	if err := e.mapping.Fit(e.zTrain, e.yHFTrain); err != nil {
		return fmt.Errorf("training probabilistic mapping: %w", err)
	}

	mean, variance, err := e.mapping.Predict(e.zMC)
	if err != nil {
		return fmt.Errorf("evaluating probabilistic mapping: %w", err)
	}
	e.meanMC, e.varMC = mean, variance

	fMeanTrain, _, err := e.mapping.Predict(e.zTrain)
	if err != nil {
		return fmt.Errorf("evaluating probabilistic mapping on training rows: %w", err)
	}
	e.fMeanTrain = fMeanTrain

	e.state = StateApproximationBuilt
	return nil
}

// ComputePyHFStatistics computes the posterior mean density of the
// high-fidelity output over the support grid and, if PredictiveVar is
// set, the posterior variance density via the pairwise bivariate
// Gaussian accumulation.
func (e *Engine) ComputePyHFStatistics() error {
	if e.state < StateApproximationBuilt {
		return e.stateError("ComputePyHFStatistics", StateApproximationBuilt)
	}

	e.pyhfMean = e.computePosteriorMean()

	if e.cfg.PredictiveVar {
		pyhfVar, err := e.computePosteriorVariance()
		if err != nil {
			return err
		}
		e.pyhfVar = pyhfVar
	} else {
		e.pyhfVar = nil
	}

	e.state = StateStatisticsComputed
	return nil
}

// ComputePyMCReference computes the kernel-density reference
// estimates: the low-fidelity output density and, if reference
// high-fidelity Monte-Carlo data exists, the high-fidelity benchmark
// density. The bandwidth comes from the injected estimator.
func (e *Engine) ComputePyMCReference() error {
	if e.state < StateDataLoaded {
		return e.stateError("ComputePyMCReference", StateDataLoaded)
	}
	if e.density == nil {
		return &ConfigError{Option: "DensityEstimator", Reason: "required for reference estimates"}
	}

	rows, numLF := e.data.YLFMC.Dims()
	yLF := make([]float64, rows)
	mat.Col(yLF, 0, e.data.YLFMC)

	bandwidth, err := e.density.EstimateBandwidth(yLF, floats.Min(yLF), floats.Max(yLF))
	if err != nil {
		return fmt.Errorf("estimating kde bandwidth: %w", err)
	}

	if e.data.YHFMC != nil {
		e.pyhfMC, err = e.density.EstimatePDF(e.data.YHFMC, bandwidth, e.support)
		if err != nil {
			return fmt.Errorf("estimating high-fidelity reference pdf: %w", err)
		}
	}

	if numLF < 2 {
		e.pylfMC, err = e.density.EstimatePDF(yLF, bandwidth, e.support)
		if err != nil {
			return fmt.Errorf("estimating low-fidelity pdf: %w", err)
		}
	}
	return nil
}

// Run drives the full analysis: data loading (when not already done),
// kernel-density references, the optional no-features comparison pass,
// the featured BMFMC pass and the posterior statistics.
// Training indices must have been set beforehand.
func (e *Engine) Run() (*Results, error) {
	if e.state == StateUnloaded {
		if err := e.LoadSamplingData(); err != nil {
			return nil, err
		}
	}
	if e.trainingIndices == nil {
		return nil, &ConfigError{Option: "TrainingIndices", Reason: "training subset not set"}
	}

	if e.density != nil {
		if err := e.ComputePyMCReference(); err != nil {
			return nil, err
		}
	}

	var meanRef, varRef []float64
	if e.cfg.NoFeaturesComparison {
		if err := e.runComparisonPass(); err != nil {
			return nil, err
		}
		meanRef, varRef = e.pyhfMean, e.pyhfVar
	}

	if err := e.BuildApproximation(); err != nil {
		return nil, err
	}
	if err := e.ComputePyHFStatistics(); err != nil {
		return nil, err
	}

	res := &Results{
		Support:     e.support,
		PyHFMean:    e.pyhfMean,
		PyHFVar:     e.pyhfVar,
		PyHFMeanRef: meanRef,
		PyHFVarRef:  varRef,
		PyLFMC:      e.pylfMC,
		PyHFMC:      e.pyhfMC,
		MeanMC:      e.meanMC,
		VarMC:       e.varMC,
		XTrain:      rowsOf(e.xTrain),
		ZTrain:      rowsOf(e.zTrain),
		ZMC:         rowsOf(e.zMC),
		YHFTrain:    append([]float64(nil), e.yHFTrain...),
	}
	return res, nil
}

// runComparisonPass executes a standard BMFMC analysis on the raw
// low-fidelity outputs, without informative features, storing its
// statistics for comparison against the featured run.
func (e *Engine) runComparisonPass() error {
	if err := e.resolveHFTrainingData(); err != nil {
		return err
	}
	if err := e.applyFeatureStrategy(NoFeatures); err != nil {
		return err
	}
	if err := e.fitAndEvaluate(); err != nil {
		return err
	}
	return e.ComputePyHFStatistics()
}

// invalidateDerived clears everything downstream of the training
// subset so that a rebuild starts from a consistent state.
func (e *Engine) invalidateDerived() {
	e.yHFTrain = nil
	e.gammasExtMC = nil
	e.zTrain, e.zMC = nil, nil
	e.meanMC, e.varMC, e.fMeanTrain = nil, nil, nil
	e.pyhfMean, e.pyhfVar = nil, nil
	if e.state > StateDataLoaded {
		e.state = StateDataLoaded
	}
}

func (e *Engine) stateError(op string, required State) error {
	return &ConfigError{
		Option: op,
		Reason: fmt.Sprintf("requires state %q, engine is in state %q", required, e.state),
	}
}
