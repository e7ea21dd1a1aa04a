// Package window holds the sliding-window statistics shared by the shot
// detector, the consensus voter and the calibrator: trailing baselines,
// the effective-std clamp, local maxima and bounded forward searches over
// an acceleration-magnitude series.
package window

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats is the mean and population standard deviation of a window.
type Stats struct {
	Mean  float64
	Std   float64
	Count int
}

// MeanStd computes population mean/std over xs. An empty slice yields a
// zero Stats with Count 0.
func MeanStd(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Stats{Mean: mean, Std: std, Count: len(xs)}
}

// Baseline returns the statistics of the size-long window that ends gap
// samples before index i, clipped at the start of mags.
func Baseline(mags []float64, i, size, gap int) Stats {
	end := i - gap
	if end > len(mags) {
		end = len(mags)
	}
	start := end - size
	if start < 0 {
		start = 0
	}
	if end <= start {
		return Stats{}
	}
	return MeanStd(mags[start:end])
}

// Effective returns the std clamped to ceiling. It never exceeds Std and
// equals Std whenever Std is below the ceiling. A non-positive ceiling
// disables clamping.
func (s Stats) Effective(ceiling float64) float64 {
	if ceiling <= 0 || s.Std < ceiling {
		return s.Std
	}
	return ceiling
}

// IsLocalMax reports whether mags[i] is a plateau-tolerant local maximum:
// strictly above its right neighbour and not below its left one.
func IsLocalMax(mags []float64, i int) bool {
	if i <= 0 || i >= len(mags)-1 {
		return false
	}
	return mags[i] > mags[i+1] && mags[i] >= mags[i-1]
}

// MinAfter finds the minimum of mags over (from, from+n], clipped to the
// slice. It returns the index of the first occurrence and false if the
// range is empty.
func MinAfter(mags []float64, from, n int) (int, float64, bool) {
	lo, hi := from+1, from+n+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(mags) {
		hi = len(mags)
	}
	if lo >= hi {
		return 0, 0, false
	}
	idx := lo + floats.MinIdx(mags[lo:hi])
	return idx, mags[idx], true
}

// MaxAfter finds the maximum of mags over (from, from+n], clipped to the
// slice.
func MaxAfter(mags []float64, from, n int) (int, float64, bool) {
	lo, hi := from+1, from+n+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(mags) {
		hi = len(mags)
	}
	if lo >= hi {
		return 0, 0, false
	}
	idx := lo + floats.MaxIdx(mags[lo:hi])
	return idx, mags[idx], true
}

// Span returns the half-open range [lo, hi) clipped to [0, n).
func Span(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
