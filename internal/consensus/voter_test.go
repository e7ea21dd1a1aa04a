package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/jumpshot/internal/testutil"
)

func TestVoter_ClearShotGetsAllVotes(t *testing.T) {
	mags := testutil.ScenarioA(400, 200)
	v := NewVoter(DefaultConfig())

	res := v.Vote(mags, 200, 212, 232)

	require.Len(t, res.Methods, 4)
	for _, m := range res.Methods {
		assert.True(t, m.Vote, "method %s should vote for a clear shot (value %.2f)", m.Method, m.Value)
		assert.Greater(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 1.0)
	}
	assert.Equal(t, 4, res.Votes)
	assert.True(t, res.IsShot)
}

func TestVoter_ShallowDipLosesOnlyDipVote(t *testing.T) {
	mags := testutil.Flat(400, testutil.Gravity, 0.2)
	shallow := testutil.JumpShot
	shallow.Dip = 6
	testutil.InsertShot(mags, 200, shallow)

	res := NewVoter(DefaultConfig()).Vote(mags, 200, 212, 232)

	byName := map[string]MethodResult{}
	for _, m := range res.Methods {
		byName[m.Method] = m
	}
	assert.False(t, byName[MethodDipDepth].Vote)
	assert.Equal(t, 3, res.Votes)
	assert.True(t, res.IsShot, "three agreeing methods outvote the dip-depth blind spot")
}

func TestVoter_EdgesVoteFalseWithZeroConfidence(t *testing.T) {
	v := NewVoter(DefaultConfig())
	// Peak on the first sample: no left neighborhood, no baseline, and the
	// dip index lies past the end.
	short := []float64{20, 9.8, 9.8}

	res := v.Vote(short, 0, 5, 9)
	for _, m := range res.Methods {
		assert.False(t, m.Vote, "method %s", m.Method)
		assert.Equal(t, 0.0, m.Confidence, "method %s", m.Method)
	}
	assert.False(t, res.IsShot)

	// Out-of-range indices must not panic.
	res = v.Vote(nil, -1, -1, -1)
	assert.Equal(t, 0, res.Votes)
}

func TestVoter_FlatPlateauFoolsOnlyEnvelope(t *testing.T) {
	// A perfectly flat pre-peak baseline makes the envelope ratio explode,
	// but a lone step without a dip must not reach quorum.
	mags := make([]float64, 400)
	for i := range mags {
		mags[i] = testutil.Gravity
	}
	for i := 200; i < 400; i++ {
		mags[i] = 14
	}
	mags[200] = 15

	res := NewVoter(DefaultConfig()).Vote(mags, 200, 210, 230)
	assert.False(t, res.IsShot)
	assert.Less(t, res.Votes, 3)
}

func TestTally_QuorumBoundary(t *testing.T) {
	base := []MethodResult{
		{Method: MethodWindowSigma, Vote: true, Confidence: 1},
		{Method: MethodEnvelopeRatio, Vote: true, Confidence: 1},
		{Method: MethodDipDepth, Vote: true, Confidence: 1},
		{Method: MethodPeakProminence, Vote: false, Confidence: 0},
	}

	for minVotes := 1; minVotes <= 4; minVotes++ {
		r := Tally(base, minVotes)
		assert.Equal(t, r.Votes >= minVotes, r.IsShot, "minVotes=%d", minVotes)

		// Flip each method in turn: the decision changes only when the
		// count crosses the quorum boundary.
		for i := range base {
			flipped := append([]MethodResult(nil), base...)
			flipped[i].Vote = !flipped[i].Vote
			fr := Tally(flipped, minVotes)
			crossed := (r.Votes >= minVotes) != (fr.Votes >= minVotes)
			assert.Equal(t, crossed, r.IsShot != fr.IsShot, "minVotes=%d flip=%d", minVotes, i)
			assert.Equal(t, fr.Votes >= minVotes, fr.IsShot)
		}
	}

	assert.InDelta(t, 0.75, Tally(base, 3).Confidence, 1e-12)
}

func TestConfigFromTuningDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 200, cfg.Window)
	assert.Equal(t, 4.0, cfg.SigmaThreshold)
	assert.Equal(t, 50, cfg.ShortWindow)
	assert.Equal(t, 200, cfg.LongWindow)
	assert.Equal(t, 5.0, cfg.DipCeiling)
	assert.Equal(t, 100, cfg.Neighborhood)
	assert.Equal(t, 3, cfg.MinVotes)
}
