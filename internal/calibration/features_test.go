package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/jumpshot/internal/testutil"
)

func TestExtractFeatures_JumpShot(t *testing.T) {
	samples := testutil.Samples(testutil.ScenarioA(300, 150))

	fv, ok := ExtractFeatures(samples, Triple{Peak: 150, Dip: 162, Rec: 182}, 9.8)
	require.True(t, ok)

	assert.InDelta(t, 20.0, fv[FeatPeakMag], 1e-9)
	assert.InDelta(t, 2.0, fv[FeatDipMag], 1e-9)
	assert.InDelta(t, 15.0, fv[FeatRecoveryMag], 1e-9)
	assert.InDelta(t, 18.0, fv[FeatRange], 1e-9)
	assert.InDelta(t, 2.0/9.8, fv[FeatDipRatio], 1e-9)
	assert.Equal(t, 12.0, fv[FeatPeakToDipSamples])
	assert.Equal(t, 20.0, fv[FeatDipToRecSamples])
	assert.Equal(t, 320.0, fv[FeatTotalDuration], "duration is in milliseconds")
	assert.InDelta(t, 10.2*0.3, fv[FeatGyroMagAtPeak], 1e-9)
	assert.InDelta(t, 7.8*0.3, fv[FeatGyroMagAtDip], 1e-9)
	assert.InDelta(t, 10.2*0.3, fv[FeatMaxGyroInWindow], 1e-9)
	assert.Greater(t, fv[FeatGyroDipToRec], 0.0)
	assert.Less(t, fv[FeatGyroDipToRec], fv[FeatGyroMagAtDip])
}

func TestExtractFeatures_InvalidTriple(t *testing.T) {
	samples := testutil.Samples(testutil.Flat(50, 9.8, 0.2))

	tests := []struct {
		name string
		tr   Triple
	}{
		{"unordered", Triple{Peak: 10, Dip: 5, Rec: 20}},
		{"equal", Triple{Peak: 10, Dip: 10, Rec: 20}},
		{"past end", Triple{Peak: 10, Dip: 20, Rec: 50}},
		{"negative", Triple{Peak: -1, Dip: 5, Rec: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractFeatures(samples, tt.tr, 9.8)
			assert.False(t, ok)
		})
	}
}

func TestExtractFeatures_ZeroBaseline(t *testing.T) {
	samples := testutil.Samples(testutil.ScenarioA(300, 150))
	fv, ok := ExtractFeatures(samples, Triple{Peak: 150, Dip: 162, Rec: 182}, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, fv[FeatDipRatio])
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, NumFeatures)
	assert.Equal(t, "peakMag", names[0])
	assert.Equal(t, "gyroDipToRec", names[NumFeatures-1])
	assert.Equal(t, "dipRatio", FeatDipRatio.String())
	assert.Equal(t, "unknown", Feature(99).String())

	names[0] = "mutated"
	assert.Equal(t, "peakMag", FeatPeakMag.String())
}
