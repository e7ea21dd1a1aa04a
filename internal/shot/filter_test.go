package shot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/testutil"
)

func TestConsensusFilter_AcceptsJumpShot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConsensusEnabled = true
	records := detectAll(t, NewDetector(cfg), testutil.Samples(testutil.ScenarioA(400, 200)))

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Consensus)
	assert.True(t, records[0].Consensus.IsShot)
	assert.Equal(t, 4, records[0].Consensus.Votes)
}

func TestConsensusFilter_QuorumRejects(t *testing.T) {
	// A dip of 5.5 clears the dip gate but not the dip-depth vote.
	shallow := testutil.JumpShot
	shallow.Dip = 5.5
	mags := testutil.Flat(400, testutil.Gravity, 0.2)
	testutil.InsertShot(mags, 200, shallow)
	samples := testutil.Samples(mags)

	cfg := DefaultConfig()
	cfg.ConsensusEnabled = true
	records := detectAll(t, NewDetector(cfg), samples)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Consensus.Votes)

	cfg.Consensus.MinVotes = 4
	assert.Empty(t, detectAll(t, NewDetector(cfg), samples))
}

func calibrationFrom(t *testing.T, shooting, walking calibration.FeatureVector) *calibration.Set {
	t.Helper()
	set := &calibration.Set{
		Version: calibration.SchemaVersion,
		Profiles: map[calibration.Activity]*calibration.Profile{
			calibration.Shooting: calibration.ComputeProfile(calibration.Shooting, []calibration.FeatureVector{shooting}),
			calibration.Walking:  calibration.ComputeProfile(calibration.Walking, []calibration.FeatureVector{walking}),
		},
	}
	require.NoError(t, set.Validate())
	return set
}

func TestCalibrationFilter(t *testing.T) {
	samples := testutil.Samples(testutil.ScenarioA(400, 200))
	patterns := calibration.ExtractPatterns(samples, calibration.DefaultConfig())
	require.Len(t, patterns, 1)
	shotFV := patterns[0].Features

	var farFV calibration.FeatureVector
	for i, v := range shotFV {
		farFV[i] = 3*v + 1
	}

	d := NewDetector(DefaultConfig())

	t.Run("no set passes through", func(t *testing.T) {
		d.SetCalibration(nil)
		records := detectAll(t, d, samples)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].Calibration)
	})

	t.Run("matching shooting profile accepts", func(t *testing.T) {
		d.SetCalibration(calibrationFrom(t, shotFV, farFV))
		records := detectAll(t, d, samples)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].Calibration)
		assert.True(t, records[0].Calibration.IsShot)
		assert.Equal(t, calibration.ReasonNearShooting, records[0].Calibration.Reason)
	})

	t.Run("matching noise profile rejects", func(t *testing.T) {
		d.SetCalibration(calibrationFrom(t, farFV, shotFV))
		assert.Empty(t, detectAll(t, d, samples))
	})

	t.Run("replacement takes effect immediately", func(t *testing.T) {
		d.SetCalibration(&calibration.Set{})
		assert.Len(t, detectAll(t, d, samples), 1)
	})
}

func TestCalibrationFilter_Disabled(t *testing.T) {
	samples := testutil.Samples(testutil.ScenarioA(400, 200))
	patterns := calibration.ExtractPatterns(samples, calibration.DefaultConfig())
	require.Len(t, patterns, 1)
	var farFV calibration.FeatureVector
	for i, v := range patterns[0].Features {
		farFV[i] = 3*v + 1
	}

	cfg := DefaultConfig()
	cfg.CalibrationEnabled = false
	d := NewDetector(cfg)
	d.SetCalibration(calibrationFrom(t, farFV, patterns[0].Features))

	records, err := d.DetectAll(context.Background(), samples)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
