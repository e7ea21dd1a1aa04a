package shot

import (
	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/consensus"
	"github.com/banshee-data/jumpshot/internal/imu"
)

// Signal is the read-only view a filter scores a candidate against. Samples
// and Mags are index-aligned with the candidate's live indices.
type Signal struct {
	Samples []imu.Sample
	Mags    []float64
}

// Filter is one post-gate stage. Accept may attach its result to c and
// reports whether the candidate survives.
type Filter interface {
	Name() string
	Accept(sig Signal, c *Candidate) bool
}

// ConsensusFilter rejects candidates that fail the voter's quorum.
type ConsensusFilter struct {
	voter *consensus.Voter
}

// NewConsensusFilter creates a ConsensusFilter.
func NewConsensusFilter(cfg consensus.Config) *ConsensusFilter {
	return &ConsensusFilter{voter: consensus.NewVoter(cfg)}
}

// Name implements Filter.
func (f *ConsensusFilter) Name() string { return "consensus" }

// Accept implements Filter.
func (f *ConsensusFilter) Accept(sig Signal, c *Candidate) bool {
	res := f.voter.Vote(sig.Mags, c.PeakIdx, c.DipIdx, c.RecIdx)
	c.Consensus = &res
	return res.IsShot
}

// CalibrationFilter classifies candidates against the current calibration
// set. Without a usable set the stage is skipped and the candidate passes.
type CalibrationFilter struct {
	cfg calibration.Config
	set func() *calibration.Set
}

// NewCalibrationFilter creates a CalibrationFilter reading its set from
// current on every call, so a replaced set takes effect immediately.
func NewCalibrationFilter(cfg calibration.Config, current func() *calibration.Set) *CalibrationFilter {
	return &CalibrationFilter{cfg: cfg, set: current}
}

// Name implements Filter.
func (f *CalibrationFilter) Name() string { return "calibration" }

// Accept implements Filter.
func (f *CalibrationFilter) Accept(sig Signal, c *Candidate) bool {
	set := f.set()
	if !set.Usable() {
		return true
	}
	fv, ok := calibration.ExtractFeatures(sig.Samples, c.Triple(), c.Baseline.Mean)
	if !ok {
		return true
	}
	res := calibration.Classify(fv, set, f.cfg)
	c.Calibration = &res
	return res.IsShot
}
