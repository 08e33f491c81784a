package risk

import "math"

// Correlation computes the Pearson correlation coefficient between two
// return series, aligned on their most recent n samples so both windows
// cover the same periods. Fewer than two overlapping samples, or a flat
// series, yields 0.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	a, b = a[len(a)-n:], b[len(b)-n:]

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// MaxAbsCorrelation returns the open-book pair with the largest absolute
// correlation to the candidate series, and that correlation.
func MaxAbsCorrelation(candidate []float64, book map[string][]float64) (pair string, corr float64) {
	for p, returns := range book {
		c := Correlation(candidate, returns)
		if math.Abs(c) > math.Abs(corr) {
			pair, corr = p, c
		}
	}
	return pair, corr
}
