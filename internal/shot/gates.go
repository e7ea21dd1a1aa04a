package shot

import (
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/window"
)

// Gate identifies the first gate a rejected index failed.
type Gate int

// Gates in evaluation order.
const (
	GateNone Gate = iota
	GateLocalMax
	GatePeak
	GateSeparation
	GateDip
	GateRecovery
)

func (g Gate) String() string {
	switch g {
	case GateNone:
		return "none"
	case GateLocalMax:
		return "local_max"
	case GatePeak:
		return "peak"
	case GateSeparation:
		return "separation"
	case GateDip:
		return "dip"
	case GateRecovery:
		return "recovery"
	}
	return "unknown"
}

// lastShot is the separation-gate state. Streaming keeps one on the
// Detector; batch keeps one per call.
type lastShot struct {
	ok  bool
	abs int64
	t   int64
}

// evaluate runs the five gates at live index i of samples/mags. offset
// converts i to an absolute index for the separation gate.
func (c *Config) evaluate(samples []imu.Sample, mags []float64, i int, offset int64, last lastShot) (Candidate, Gate) {
	if !window.IsLocalMax(mags, i) {
		return Candidate{}, GateLocalMax
	}
	peak := mags[i]

	base := window.Baseline(mags, i, c.BaselineWindow, c.BaselineGap)
	if base.Count < c.BaselineMinSamples {
		return Candidate{}, GatePeak
	}
	eff := base.Effective(c.EffectiveStdCap)
	sigma := c.PeakSigma
	if c.MovingStdThreshold > 0 && base.Std > c.MovingStdThreshold {
		sigma = c.MovingPeakSigma
	}
	if peak < base.Mean+sigma*eff || peak < c.MinPeakAbs {
		return Candidate{}, GatePeak
	}

	t := samples[i].T
	if last.ok {
		if offset+int64(i)-last.abs < int64(c.MinSeparationSamples) || t-last.t < c.MinIntervalMs {
			return Candidate{}, GateSeparation
		}
	}

	dipIdx, dip, ok := window.MinAfter(mags, i, c.DipSearch)
	if !ok {
		return Candidate{}, GateDip
	}
	rng := peak - dip
	minRange := c.MinPeakToDipAbs
	if r := c.RangeSigma * eff; r > minRange {
		minRange = r
	}
	if dip > base.Mean-c.DipSigma*base.Std || dip > c.MaxDipAbs || rng < minRange {
		return Candidate{}, GateDip
	}

	recIdx, rec, ok := window.MaxAfter(mags, dipIdx, c.RecSearch)
	if !ok || rec < base.Mean+c.RecoverySigma*eff || rec-dip < c.MinRiseFromDip {
		return Candidate{}, GateRecovery
	}

	return Candidate{
		PeakIdx:     i,
		DipIdx:      dipIdx,
		RecIdx:      recIdx,
		PeakMag:     peak,
		DipMag:      dip,
		RecoveryMag: rec,
		Range:       rng,
		Timestamp:   t,
		Baseline:    base,
	}, GateNone
}
