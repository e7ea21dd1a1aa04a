package calibration

import (
	"github.com/banshee-data/jumpshot/internal/config"
)

// Config holds the pattern-mining and classification parameters.
type Config struct {
	// Relaxed pattern mining
	PeakSigma  float64 // global sigma multiplier for the peak threshold (default: 1.0)
	MinPeakAbs float64 // absolute peak floor (default: 11.0)
	MinDrop    float64 // minimum peak-to-dip drop (default: 3.0)
	MinRise    float64 // minimum dip-to-recovery rise (default: 2.0)
	MinSpacing int     // minimum samples between mined peaks (default: 20)
	DipSearch  int     // samples searched for the dip (default: 35)
	RecSearch  int     // samples searched for the recovery (default: 30)

	// Baseline used for dipRatio
	BaselineWindow     int // (default: 80)
	BaselineGap        int // (default: 20)
	BaselineMinSamples int // (default: 10)

	// Classification
	Margin        float64              // distance margin granted to shooting (default: 0.5)
	DipRatioStds  float64              // stage-1 width above the shooting dipRatio mean (default: 2.0)
	Weights       [NumFeatures]float64 // per-feature distance weights, in vector order
	MinFeatureStd float64              // absolute std floor in z-scores (default: 1e-3)
	RelFeatureStd float64              // std floor as a fraction of |mean| (default: 0.05)
	MaxFeatureZ   float64              // per-feature z cap, 0 for none (default: 10)
}

// DefaultConfig returns the built-in calibration parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		PeakSigma:          cfg.GetPatternPeakSigma(),
		MinPeakAbs:         cfg.GetPatternMinPeakAbs(),
		MinDrop:            cfg.GetPatternMinDrop(),
		MinRise:            cfg.GetPatternMinRise(),
		MinSpacing:         cfg.GetPatternMinSpacing(),
		DipSearch:          cfg.GetDipSearchSamples(),
		RecSearch:          cfg.GetRecoverySearchSamples(),
		BaselineWindow:     cfg.GetBaselineWindow(),
		BaselineGap:        cfg.GetBaselineGap(),
		BaselineMinSamples: cfg.GetBaselineMinSamples(),
		Margin:             cfg.GetClassifyMargin(),
		DipRatioStds:       cfg.GetDipRatioRejectStds(),
		Weights:            weightsFromTuning(cfg),
		MinFeatureStd:      cfg.GetClassifyMinFeatureStd(),
		RelFeatureStd:      cfg.GetClassifyRelFeatureStd(),
		MaxFeatureZ:        cfg.GetClassifyMaxFeatureZ(),
	}
}

func weightsFromTuning(cfg *config.TuningConfig) [NumFeatures]float64 {
	byName := cfg.GetClassifyWeights()
	var w [NumFeatures]float64
	for i, name := range featureNames {
		w[i] = byName[name]
	}
	return w
}
