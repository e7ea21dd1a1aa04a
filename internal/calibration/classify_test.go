package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformProfile(a Activity, means FeatureVector, std float64) *Profile {
	p := &Profile{Activity: a, Count: 10, Features: make([]FeatureStats, NumFeatures)}
	for i := range p.Features {
		p.Features[i] = FeatureStats{
			Name: featureNames[i],
			Mean: means[i],
			Std:  std,
			Min:  means[i] - std,
			Max:  means[i] + std,
		}
	}
	return p
}

func shotMeans() FeatureVector {
	return FeatureVector{20, 2, 15, 18, 0.2, 12, 20, 320, 3, 2.3, 3, 1.2}
}

func walkMeans() FeatureVector {
	return FeatureVector{12, 7, 11, 5, 0.2, 25, 25, 500, 0.8, 0.5, 1, 0.6}
}

func testSet() *Set {
	return &Set{
		Version: SchemaVersion,
		Profiles: map[Activity]*Profile{
			Shooting: uniformProfile(Shooting, shotMeans(), 0.5),
			Walking:  uniformProfile(Walking, walkMeans(), 0.5),
		},
	}
}

func TestClassify_FailOpen(t *testing.T) {
	noShooting := testSet()
	delete(noShooting.Profiles, Shooting)

	tests := []struct {
		name string
		set  *Set
	}{
		{"nil set", nil},
		{"empty set", &Set{}},
		{"no shooting profile", noShooting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(walkMeans(), tt.set, DefaultConfig())
			assert.True(t, res.IsShot)
			assert.Equal(t, ReasonNoCalibration, res.Reason)
			assert.Equal(t, 0.0, res.Confidence)
		})
	}
}

func TestClassify_NearestShooting(t *testing.T) {
	res := Classify(shotMeans(), testSet(), DefaultConfig())
	assert.True(t, res.IsShot)
	assert.Equal(t, ReasonNearShooting, res.Reason)
	assert.Equal(t, Shooting, res.Nearest)
	require.Contains(t, res.Distances, Walking)
	assert.Equal(t, 0.0, res.Distances[Shooting])
	assert.Greater(t, res.Distances[Walking], res.Distances[Shooting])
	assert.Greater(t, res.Confidence, 0.5)
}

func TestClassify_NearestNoise(t *testing.T) {
	res := Classify(walkMeans(), testSet(), DefaultConfig())
	assert.False(t, res.IsShot)
	assert.Equal(t, ReasonNearNoise, res.Reason)
	assert.Equal(t, Walking, res.Nearest)
	assert.Equal(t, 0.0, res.Distances[Walking])
}

func TestClassify_MarginFavoursShooting(t *testing.T) {
	set := testSet()
	cfg := DefaultConfig()
	cfg.RelFeatureStd = 0

	// Halfway between the two profiles the distances are equal, so the
	// margin decides in favour of shooting.
	var mid FeatureVector
	s, w := shotMeans(), walkMeans()
	for i := range mid {
		mid[i] = (s[i] + w[i]) / 2
	}
	res := Classify(mid, set, cfg)
	assert.InDelta(t, res.Distances[Shooting], res.Distances[Walking], 1e-9)
	assert.True(t, res.IsShot)

	cfg.Margin = -1
	res = Classify(mid, set, cfg)
	assert.False(t, res.IsShot)
}

func TestClassify_DipRatioHardReject(t *testing.T) {
	set := testSet()
	walk := walkMeans()
	walk[FeatDipRatio] = 0.8
	set.Profiles[Walking] = uniformProfile(Walking, walk, 0.1)
	set.Profiles[Shooting].Features[FeatDipRatio].Std = 0.05

	// Every other feature looks like a shot.
	fv := shotMeans()
	fv[FeatDipRatio] = 0.85

	res := Classify(fv, set, DefaultConfig())
	assert.False(t, res.IsShot)
	assert.Equal(t, ReasonDipRatioNoise, res.Reason)
	assert.Equal(t, Walking, res.Nearest)

	// Above the shooting band but far from any noise dipRatio: falls through.
	fv[FeatDipRatio] = 0.5
	res = Classify(fv, set, DefaultConfig())
	assert.NotEqual(t, ReasonDipRatioNoise, res.Reason)
	assert.True(t, res.IsShot)
}

func TestClassify_ShootingOnly(t *testing.T) {
	set := testSet()
	delete(set.Profiles, Walking)

	res := Classify(walkMeans(), set, DefaultConfig())
	assert.True(t, res.IsShot)
	assert.Equal(t, ReasonNearShooting, res.Reason)
}
