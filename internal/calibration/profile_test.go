package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProfile_Empty(t *testing.T) {
	assert.Nil(t, ComputeProfile(Shooting, nil))
	assert.Nil(t, ComputeProfile(Walking, []FeatureVector{}))
}

func TestComputeProfile_IdenticalVectors(t *testing.T) {
	var fv FeatureVector
	for i := range fv {
		fv[i] = 0.1 * float64(i+1)
	}

	p := ComputeProfile(Shooting, []FeatureVector{fv, fv, fv})
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Count)
	require.Len(t, p.Features, NumFeatures)
	for i, fs := range p.Features {
		assert.Equal(t, featureNames[i], fs.Name)
		assert.Equal(t, fv[i], fs.Mean, "mean must be exactly the shared value")
		assert.Equal(t, 0.0, fs.Std)
		assert.Equal(t, fv[i], fs.Min)
		assert.Equal(t, fv[i], fs.Max)
	}
}

func TestComputeProfile_Statistics(t *testing.T) {
	var a, b FeatureVector
	a[FeatPeakMag], b[FeatPeakMag] = 18, 22

	p := ComputeProfile(Running, []FeatureVector{a, b})
	require.NotNil(t, p)
	s := p.Stat(FeatPeakMag)
	assert.InDelta(t, 20.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.Std, 1e-12, "population std")
	assert.Equal(t, 18.0, s.Min)
	assert.Equal(t, 22.0, s.Max)
}

func TestDistance_ZeroStdStaysFinite(t *testing.T) {
	var fv FeatureVector
	for i := range fv {
		fv[i] = 1
	}
	p := ComputeProfile(Shooting, []FeatureVector{fv})

	cfg := DefaultConfig()
	assert.Equal(t, 0.0, Distance(fv, p, cfg))

	fv[FeatDipMag] = 1000
	d := Distance(fv, p, cfg)
	assert.False(t, math.IsInf(d, 0) || math.IsNaN(d))

	var wsum float64
	for _, w := range cfg.Weights {
		wsum += w
	}
	assert.InDelta(t, cfg.MaxFeatureZ*cfg.Weights[FeatDipMag]/wsum, d, 1e-9, "z-score is capped")
}
