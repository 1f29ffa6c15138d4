package predictor

import "math"

// standardScaler standardizes features to zero mean and unit variance. The
// fitted moments are persisted with the model so serving applies exactly the
// transform training saw.
type standardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// fit computes per-column moments from the training rows
func (s *standardScaler) fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] < 1e-9 {
			s.Std[j] = 1 // constant column, leave centered values at zero
		}
	}
}

// transform standardizes one row into a new slice
func (s *standardScaler) transform(row []float64) []float64 {
	if len(s.Mean) != len(row) {
		out := make([]float64, len(row))
		copy(out, row)
		return out
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// transformAll standardizes a matrix
func (s *standardScaler) transformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.transform(row)
	}
	return out
}
