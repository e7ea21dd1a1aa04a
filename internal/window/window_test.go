package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanStd(t *testing.T) {
	s := MeanStd([]float64{9.6, 10.0, 9.6, 10.0})
	assert.InDelta(t, 9.8, s.Mean, 1e-12)
	assert.InDelta(t, 0.2, s.Std, 1e-12)
	assert.Equal(t, 4, s.Count)

	assert.Equal(t, Stats{}, MeanStd(nil))
}

func TestBaseline_WindowPlacement(t *testing.T) {
	mags := make([]float64, 200)
	for i := range mags {
		mags[i] = float64(i)
	}
	// Window of 80 ending 20 before index 150 covers [50, 130).
	s := Baseline(mags, 150, 80, 20)
	assert.Equal(t, 80, s.Count)
	assert.InDelta(t, 89.5, s.Mean, 1e-9)

	// Clipped at the start of the series.
	s = Baseline(mags, 40, 80, 20)
	assert.Equal(t, 20, s.Count)

	// Nothing before the gap.
	s = Baseline(mags, 15, 80, 20)
	assert.Equal(t, 0, s.Count)
}

func TestEffectiveStdNeverExceedsTrueStd(t *testing.T) {
	const ceiling = 1.5
	for _, std := range []float64{0.01, 0.2, 0.8, 1.49, 1.5, 2.5, 10} {
		s := Stats{Std: std}
		eff := s.Effective(ceiling)
		assert.LessOrEqual(t, eff, std)
		if std < ceiling {
			assert.Equal(t, std, eff, "below the cap effective std must equal true std")
		} else {
			assert.Equal(t, ceiling, eff)
		}
	}
	assert.Equal(t, 4.0, Stats{Std: 4}.Effective(0))
}

func TestIsLocalMax(t *testing.T) {
	mags := []float64{1, 3, 2, 2, 5, 5, 4, 6}
	tests := []struct {
		i    int
		want bool
	}{
		{0, false}, // edge
		{1, true},
		{2, false},
		{4, false}, // right neighbour equal
		{5, true},  // plateau, strictly above right
		{7, false}, // edge
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLocalMax(mags, tt.i), "index %d", tt.i)
	}
}

func TestMinMaxAfter(t *testing.T) {
	mags := []float64{10, 20, 8, 2, 2, 9, 15, 11}

	idx, v, ok := MinAfter(mags, 1, 4)
	assert.True(t, ok)
	assert.Equal(t, 3, idx, "first occurrence of the minimum")
	assert.Equal(t, 2.0, v)

	idx, v, ok = MaxAfter(mags, 3, 30)
	assert.True(t, ok)
	assert.Equal(t, 6, idx)
	assert.Equal(t, 15.0, v)

	_, _, ok = MinAfter(mags, 7, 5)
	assert.False(t, ok)
}

func TestSpan(t *testing.T) {
	lo, hi := Span(-5, 12, 10)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 10, hi)
	lo, hi = Span(8, 3, 10)
	assert.Equal(t, 8, lo)
	assert.Equal(t, 8, hi)
}
