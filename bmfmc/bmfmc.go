// Copyright 2025 Calyx UQ Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bmfmc provides Bayesian multi-fidelity Monte-Carlo analysis:
// posterior density estimates of an expensive high-fidelity output
// built from cheap low-fidelity Monte-Carlo samples and a small
// high-fidelity training subset.
//
// # Basic Usage
//
//	import (
//	    "github.com/calyx-uq/calyx/bmfmc"
//	    "github.com/calyx-uq/calyx/gp"
//	    "github.com/calyx-uq/calyx/kde"
//	)
//
//	func main() {
//	    mapping, err := gp.New(gp.Hyperparams{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    engine, err := bmfmc.NewEngine(bmfmc.Config{
//	        FeaturesConfig: bmfmc.OptimalFeatures,
//	        NumFeatures:    1,
//	        PredictiveVar:  true,
//	        SupportMin:     -2,
//	        SupportMax:     2,
//	    }, mapping, source, nil, kde.New())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := engine.LoadSamplingData(); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := engine.SetTrainingIndices(indices); err != nil {
//	        log.Fatal(err)
//	    }
//	    results, err := engine.Run()
package bmfmc

import (
	"github.com/calyx-uq/calyx/internal/bmfmc"
)

// Engine orchestrates feature construction, surrogate training and
// posterior output-density computation.
type Engine = bmfmc.Engine

// Config holds the engine options.
type Config = bmfmc.Config

// Results gathers the outputs of a full analysis run.
type Results = bmfmc.Results

// State identifies the engine's position in its one-way pipeline.
type State = bmfmc.State

const (
	StateUnloaded             = bmfmc.StateUnloaded
	StateDataLoaded           = bmfmc.StateDataLoaded
	StateTrainingDataResolved = bmfmc.StateTrainingDataResolved
	StateApproximationBuilt   = bmfmc.StateApproximationBuilt
	StateStatisticsComputed   = bmfmc.StateStatisticsComputed
)

// FeaturePolicy selects how the feature matrix for the regression
// mapping is constructed from the low-fidelity data.
type FeaturePolicy = bmfmc.FeaturePolicy

const (
	// NoFeatures uses the raw low-fidelity outputs as features.
	NoFeatures = bmfmc.NoFeatures
	// ManualFeatures concatenates caller-specified input columns to
	// the low-fidelity outputs.
	ManualFeatures = bmfmc.ManualFeatures
	// OptimalFeatures greedily selects the input dimensions most
	// correlated with the low-fidelity output.
	OptimalFeatures = bmfmc.OptimalFeatures
)

// Collaborator contracts

// ProbabilisticMapping is a trainable regression surrogate between
// low-fidelity features and high-fidelity outputs.
type ProbabilisticMapping = bmfmc.ProbabilisticMapping

// HighFidelityModel evaluates the expensive simulation on a batch of
// input rows.
type HighFidelityModel = bmfmc.HighFidelityModel

// DensityEstimator provides kernel-density reference estimates.
type DensityEstimator = bmfmc.DensityEstimator

// SamplingSource provides read-only access to the persisted
// low-fidelity Monte-Carlo sample arrays.
type SamplingSource = bmfmc.SamplingSource

// MemorySource is a SamplingSource over in-memory arrays.
type MemorySource = bmfmc.MemorySource

// Data

// SamplingData is the low-fidelity Monte-Carlo sample set together
// with optional high-fidelity reference outputs.
type SamplingData = bmfmc.SamplingData

// RandomFieldBasis describes the truncated eigendecomposition of one
// discretized random field in the input matrix.
type RandomFieldBasis = bmfmc.RandomFieldBasis

// Errors

// ConfigError reports an invalid or contradictory engine setup.
type ConfigError = bmfmc.ConfigError

// MissingDataError reports that declared external data is unavailable.
type MissingDataError = bmfmc.MissingDataError

// DataError reports an invalid dataset.
type DataError = bmfmc.DataError

// NewEngine validates the configuration and wires the collaborators.
// The mapping and source are required; hfModel and density may be nil.
func NewEngine(cfg Config, mapping ProbabilisticMapping, source SamplingSource,
	hfModel HighFidelityModel, density DensityEstimator) (*Engine, error) {
	return bmfmc.NewEngine(cfg, mapping, source, hfModel, density)
}
