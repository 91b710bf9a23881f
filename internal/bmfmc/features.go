package bmfmc

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/calyx-uq/calyx/internal/numutil"
)

// SetFeatureStrategy determines the feature matrices Z_train and Z_mc
// used for the regression mapping according to the configured policy.
// It may be re-invoked (followed by BuildApproximation) to rebuild the
// mapping with different features; downstream statistics are
// overwritten on the next build.
func (e *Engine) SetFeatureStrategy() error {
	if e.state < StateDataLoaded {
		return e.stateError("SetFeatureStrategy", StateDataLoaded)
	}
	if e.xTrain == nil {
		return &ConfigError{Option: "TrainingIndices", Reason: "training inputs not set"}
	}
	return e.applyFeatureStrategy(e.cfg.FeaturesConfig)
}

func (e *Engine) applyFeatureStrategy(policy FeaturePolicy) error {
	switch policy {
	case NoFeatures:
		e.zTrain = e.yLFTrain
		e.zMC = e.data.YLFMC

	case ManualFeatures:
		if len(e.cfg.XCols) == 0 {
			return &ConfigError{Option: "XCols",
				Reason: "manual feature policy requires at least one input column"}
		}
		_, dims := e.data.XMC.Dims()
		for _, col := range e.cfg.XCols {
			if col < 0 || col >= dims {
				return &ConfigError{Option: "XCols",
					Reason: "input column index out of range"}
			}
		}
		e.zTrain = hstack(e.yLFTrain, selectCols(e.xTrain, e.cfg.XCols))
		e.zMC = hstack(e.data.YLFMC, selectCols(e.data.XMC, e.cfg.XCols))

	case OptimalFeatures:
		if e.cfg.NumFeatures < 1 {
			return &ConfigError{Option: "NumFeatures",
				Reason: "feature count must be an integer greater than zero"}
		}
		if err := e.calculateExtendedGammas(); err != nil {
			return err
		}
		_, available := e.gammasExtMC.Dims()
		count := e.cfg.NumFeatures
		if count > available {
			e.log.Warn("fewer informative features available than requested",
				slog.Int("requested", count), slog.Int("available", available))
			count = available
		}
		gammaCols := make([]int, count)
		for i := range gammaCols {
			gammaCols[i] = i
		}
		e.zMC = hstack(e.data.YLFMC, selectCols(e.gammasExtMC, gammaCols))
		e.zTrain = selectRows(e.zMC, e.trainingIndices)

	default:
		return &ConfigError{Option: "FeaturesConfig",
			Reason: "unknown feature policy " + string(policy)}
	}
	return nil
}

// calculateExtendedGammas ranks the (dimension-reduced, standardized)
// input dimensions by the magnitude of their Pearson correlation with
// the standardized low-fidelity output, greedily removing the chosen
// dimension from the candidate pool each iteration. Every selected
// feature is linearly rescaled onto the output's numeric range before
// concatenation, which eases the fit of the probabilistic mapping.
func (e *Engine) calculateExtendedGammas() error {
	xRed, err := e.inputDimRed()
	if err != nil {
		return err
	}

	rows, numLF := e.data.YLFMC.Dims()
	yStd := e.standardizedLFOutputs()

	// Output range reference for the linear feature rescale. Collected
	// per column so that sliced output matrices contribute only the
	// values inside their window.
	yRange := make([]float64, 0, rows*numLF)
	rangeCol := make([]float64, rows)
	for j := 0; j < numLF; j++ {
		mat.Col(rangeCol, j, e.data.YLFMC)
		yRange = append(yRange, rangeCol...)
	}

	_, candidates := xRed.Dims()
	pool := make([]int, candidates)
	for i := range pool {
		pool[i] = i
	}

	selected := mat.NewDense(rows, candidates, nil)
	col := make([]float64, rows)

	for feature := 0; feature < candidates; feature++ {
		best, bestScore := -1, math.Inf(-1)
		for pos, cand := range pool {
			mat.Col(col, cand, xRed)
			if score := maxAbsProjection(col, yStd); score > bestScore {
				bestScore = score
				best = pos
			}
		}

		chosen := pool[best]
		mat.Col(col, chosen, xRed)
		selected.SetCol(feature, numutil.LinearScaleToRange(col, yRange))

		// Remove the winner from the candidate pool.
		pool = append(pool[:best], pool[best+1:]...)
	}

	e.gammasExtMC = selected
	return nil
}

// maxAbsProjection scores one candidate column against all (already
// standardized) low-fidelity output columns and returns the largest
// absolute projection, an unnormalized Pearson correlation.
func maxAbsProjection(candidate []float64, yStd *mat.Dense) float64 {
	_, numLF := yStd.Dims()
	col := make([]float64, len(candidate))
	best := math.Inf(-1)
	for j := 0; j < numLF; j++ {
		mat.Col(col, j, yStd)
		var dot float64
		for i, v := range candidate {
			dot += v * col[i]
		}
		if abs := math.Abs(dot); abs > best {
			best = abs
		}
	}
	return best
}

func (e *Engine) standardizedLFOutputs() *mat.Dense {
	return numutil.StandardizeColumns(e.data.YLFMC)
}

// inputDimRed reduces the dimensionality of the input space: samples
// of each random field are projected onto its truncated eigenbasis
// (keeping the eigenfunctions up to the configured explained-variance
// threshold) and the projection coefficients replace the raw
// discretization columns. The uncorrelated random variables and the
// reduced field representations are assembled and standardized along
// each remaining dimension.
func (e *Engine) inputDimRed() (*mat.Dense, error) {
	_, dims := e.data.XMC.Dims()

	numRV := e.data.NumRandomVariables
	if len(e.data.RandomFields) == 0 {
		numRV = dims
	}
	rvCols := make([]int, numRV)
	for i := range rvCols {
		rvCols[i] = i
	}
	xRed := selectCols(e.data.XMC, rvCols)

	for i := range e.data.RandomFields {
		field := &e.data.RandomFields[i]
		basis, err := field.Truncate(e.cfg.ExplainedVar)
		if err != nil {
			return nil, err
		}

		fieldCols := make([]int, field.NumPoints)
		for j := range fieldCols {
			fieldCols[j] = field.Start + j
		}
		samples := selectCols(e.data.XMC, fieldCols)

		// Coefficients of the series expansion: samples * basisᵀ.
		var coefs mat.Dense
		coefs.Mul(samples, basis.T())
		xRed = hstack(xRed, &coefs)
	}

	return numutil.StandardizeColumns(xRed), nil
}
