package calibration

import (
	"math"

	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/window"
)

// Pattern is one shot-shaped motion mined from a recording.
type Pattern struct {
	Triple   Triple        `json:"triple"`
	Features FeatureVector `json:"features"`
}

// ExtractPatterns mines every shot-shaped motion in a labeled recording.
//
// The search is deliberately looser than the live detector: the peak
// threshold is max(globalMean + PeakSigma·globalStd, MinPeakAbs) over the
// whole recording, with small drop/rise minimums and a short spacing, so
// near-miss shapes in the noise activities are harvested as well as the
// true shots.
func ExtractPatterns(recording []imu.Sample, cfg Config) []Pattern {
	if len(recording) < 3 {
		return nil
	}
	mags := imu.Mags(recording)
	global := window.MeanStd(mags)
	threshold := math.Max(global.Mean+cfg.PeakSigma*global.Std, cfg.MinPeakAbs)

	var patterns []Pattern
	last := -1
	for i := 1; i < len(mags)-1; i++ {
		if mags[i] < threshold || !window.IsLocalMax(mags, i) {
			continue
		}
		if last >= 0 && i-last < cfg.MinSpacing {
			continue
		}
		dipIdx, dip, ok := window.MinAfter(mags, i, cfg.DipSearch)
		if !ok || mags[i]-dip < cfg.MinDrop {
			continue
		}
		recIdx, rec, ok := window.MaxAfter(mags, dipIdx, cfg.RecSearch)
		if !ok || rec-dip < cfg.MinRise {
			continue
		}

		baseMean := global.Mean
		if b := window.Baseline(mags, i, cfg.BaselineWindow, cfg.BaselineGap); b.Count >= cfg.BaselineMinSamples {
			baseMean = b.Mean
		}
		tr := Triple{Peak: i, Dip: dipIdx, Rec: recIdx}
		fv, ok := ExtractFeatures(recording, tr, baseMean)
		if !ok {
			continue
		}
		patterns = append(patterns, Pattern{Triple: tr, Features: fv})
		last = i
	}
	return patterns
}
