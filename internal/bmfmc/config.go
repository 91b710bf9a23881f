package bmfmc

import (
	"log/slog"

	"github.com/calyx-uq/calyx/internal/parallel"
)

// FeaturePolicy selects how the feature matrix Z for the regression
// mapping is constructed from the low-fidelity data.
type FeaturePolicy string

const (
	// NoFeatures uses the raw low-fidelity outputs as features.
	NoFeatures FeaturePolicy = "no_features"
	// ManualFeatures concatenates caller-specified input columns to
	// the low-fidelity outputs.
	ManualFeatures FeaturePolicy = "man_features"
	// OptimalFeatures greedily selects the input dimensions most
	// correlated with the low-fidelity output.
	OptimalFeatures FeaturePolicy = "opt_features"
)

// Config holds the engine options.
type Config struct {
	// FeaturesConfig selects the feature-construction policy.
	FeaturesConfig FeaturePolicy
	// NumFeatures is the number of greedily selected informative
	// features; used with OptimalFeatures only and must be >= 1.
	NumFeatures int
	// XCols names the input columns appended as manual features; used
	// with ManualFeatures only.
	XCols []int

	// PredictiveVar enables the O(n²) posterior-variance computation.
	PredictiveVar bool
	// NoFeaturesComparison additionally runs a standard BMFMC analysis
	// without features as a reference.
	NoFeaturesComparison bool

	// Support grid for the output density: SupportPoints evenly spaced
	// values over [SupportMin, SupportMax]. SupportPoints defaults
	// to 200.
	SupportMin    float64
	SupportMax    float64
	SupportPoints int

	// PairSpacing subsamples every k-th Monte-Carlo point in the
	// pairwise variance loop. Defaults to 1 (all points).
	PairSpacing int

	// ExplainedVar is the truncation threshold (percent) for the
	// random-field eigenbasis. Defaults to 95.
	ExplainedVar float64

	// Parallel controls the worker configuration of the variance
	// accumulation. The zero value enables defaults based on CPU count.
	Parallel parallel.Config

	// Logger for progress and numerical-conditioning warnings. If nil,
	// uses slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	switch c.FeaturesConfig {
	case NoFeatures, ManualFeatures:
	case OptimalFeatures:
		if c.NumFeatures < 1 {
			return &ConfigError{Option: "NumFeatures",
				Reason: "feature count must be an integer greater than zero"}
		}
	default:
		return &ConfigError{Option: "FeaturesConfig",
			Reason: "unknown feature policy " + string(c.FeaturesConfig)}
	}
	if c.SupportMin >= c.SupportMax {
		return &ConfigError{Option: "SupportMin",
			Reason: "support interval must satisfy SupportMin < SupportMax"}
	}
	if c.SupportPoints < 0 {
		return &ConfigError{Option: "SupportPoints", Reason: "must be non-negative"}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SupportPoints == 0 {
		c.SupportPoints = 200
	}
	if c.PairSpacing == 0 {
		c.PairSpacing = 1
	}
	if c.ExplainedVar == 0 {
		c.ExplainedVar = 95
	}
	if c.Parallel == (parallel.Config{}) {
		c.Parallel = parallel.DefaultConfig()
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
