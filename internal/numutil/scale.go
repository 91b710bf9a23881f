package numutil

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearScaleToRange rescales the data vector a linearly onto the
// numeric range of the reference vector b:
//
//	scaled = min(b) + (a - min(a)) * (max(b)-min(b))/(max(a)-min(a))
//
// A constant input vector maps onto min(b). The result is a new slice.
func LinearScaleToRange(a, b []float64) []float64 {
	minA, maxA := floats.Min(a), floats.Max(a)
	minB, maxB := floats.Min(b), floats.Max(b)

	scaled := make([]float64, len(a))
	spanA := maxA - minA
	if spanA == 0 {
		for i := range scaled {
			scaled[i] = minB
		}
		return scaled
	}
	ratio := (maxB - minB) / spanA
	for i, v := range a {
		scaled[i] = minB + (v-minA)*ratio
	}
	return scaled
}

// StandardizeColumns returns a copy of m with every column shifted to
// zero mean and scaled to unit (population) standard deviation.
// Constant columns are left at zero after centering.
func StandardizeColumns(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		for i := 0; i < rows; i++ {
			v := col[i] - mean
			if std > 0 {
				v /= std
			}
			out.Set(i, j, v)
		}
	}
	return out
}

// StandardizeVector standardizes a single vector to zero mean and unit
// population standard deviation, returning a new slice.
func StandardizeVector(x []float64) []float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
		if std > 0 {
			out[i] /= std
		}
	}
	return out
}
