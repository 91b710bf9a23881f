package bmfmc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RandomFieldBasis describes the truncated eigendecomposition of one
// discretized random field in the input matrix. Columns
// [Start, Start+NumPoints) of X hold the field's samples.
type RandomFieldBasis struct {
	Name      string
	Start     int
	NumPoints int

	// Basis rows are eigenfunctions evaluated at the discretization
	// points; Eigenvalues holds the cumulative explained variance (in
	// percent) per eigenfunction.
	Basis       *mat.Dense
	Eigenvalues []float64
}

// Truncate returns the rows of the basis up to the first eigenfunction
// whose cumulative explained variance reaches the threshold.
func (b *RandomFieldBasis) Truncate(explainedVar float64) (*mat.Dense, error) {
	idx := -1
	for i, ev := range b.Eigenvalues {
		if ev >= explainedVar {
			idx = i
			break
		}
	}
	if idx < 1 {
		return nil, &DataError{Reason: fmt.Sprintf(
			"random field %q: no usable truncation at %.1f%% explained variance", b.Name, explainedVar)}
	}
	rows, cols := b.Basis.Dims()
	if idx > rows {
		idx = rows
	}
	return b.Basis.Slice(0, idx, 0, cols).(*mat.Dense), nil
}

// SamplingData is the low-fidelity Monte-Carlo sample set together
// with optional high-fidelity reference outputs.
type SamplingData struct {
	// XMC is the Monte-Carlo input matrix (n_samples x n_input_dims).
	XMC *mat.Dense
	// YLFMC holds one low-fidelity output column per low-fidelity
	// model (n_samples x n_lf).
	YLFMC *mat.Dense

	// NumRandomVariables is the count of leading uncorrelated input
	// columns; any remaining columns are random-field discretizations
	// described by RandomFields.
	NumRandomVariables int
	RandomFields       []RandomFieldBasis

	// HFDeclared indicates that high-fidelity reference data was
	// configured; if it is true and YHFMC is nil, loading fails with a
	// MissingDataError.
	HFDeclared bool
	// YHFMC holds reference high-fidelity outputs matching XMC row for
	// row (benchmarking / training-data lookup).
	YHFMC []float64
}

func (d *SamplingData) validate() error {
	if d.XMC == nil || d.YLFMC == nil {
		return &DataError{Reason: "sampling data must contain inputs and low-fidelity outputs"}
	}
	nx, _ := d.XMC.Dims()
	ny, _ := d.YLFMC.Dims()
	if nx != ny {
		return &DataError{Reason: fmt.Sprintf(
			"input rows (%d) and low-fidelity output rows (%d) differ", nx, ny)}
	}
	if d.HFDeclared && d.YHFMC == nil {
		return &MissingDataError{Key: "high-fidelity reference outputs"}
	}
	if d.YHFMC != nil && len(d.YHFMC) != nx {
		return &DataError{Reason: fmt.Sprintf(
			"high-fidelity reference length (%d) does not match input rows (%d)", len(d.YHFMC), nx)}
	}
	return nil
}

// matchRow returns the index of the first row of m equal to row, or -1.
func matchRow(m *mat.Dense, row []float64) int {
	rows, cols := m.Dims()
	if len(row) != cols {
		return -1
	}
outer:
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.At(i, j) != row[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// hstack concatenates matrices horizontally.
func hstack(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Augment(a, b)
	return &out
}

// selectRows copies the given rows of m into a new matrix.
func selectRows(m *mat.Dense, indices []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		out.SetRow(i, m.RawRowView(idx))
	}
	return out
}

// selectCols copies the given columns of m into a new matrix.
func selectCols(m *mat.Dense, indices []int) *mat.Dense {
	rows, _ := m.Dims()
	out := mat.NewDense(rows, len(indices), nil)
	col := make([]float64, rows)
	for j, idx := range indices {
		mat.Col(col, idx, m)
		out.SetCol(j, col)
	}
	return out
}

// rowsOf copies a matrix into a row-major [][]float64; nil in, nil out.
func rowsOf(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		copy(out[i], m.RawRowView(i))
	}
	return out
}

// linspace fills an evenly spaced support grid over [min, max].
func linspace(min, max float64, points int) []float64 {
	out := make([]float64, points)
	if points == 1 {
		out[0] = min
		return out
	}
	step := (max - min) / float64(points-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}
