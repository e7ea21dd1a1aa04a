package shot

import (
	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/consensus"
)

// Config holds the gate thresholds and post-filter settings of a Detector.
type Config struct {
	// Baseline
	BaselineWindow     int     // samples in the baseline window (default: 80)
	BaselineGap        int     // samples between the window end and the peak (default: 20)
	BaselineMinSamples int     // fewest baseline samples for a candidate (default: 10)
	EffectiveStdCap    float64 // ceiling on std for peak/range/recovery gates (default: 1.5)

	// Peak gate
	PeakSigma          float64 // sigma multiplier on a quiet baseline (default: 2.5)
	MovingPeakSigma    float64 // sigma multiplier once the baseline itself is moving (default: 5.0)
	MovingStdThreshold float64 // baseline std above which MovingPeakSigma applies (default: 0.8)
	MinPeakAbs         float64 // absolute peak floor in m/s² (default: 14.0)

	// Separation gate
	MinSeparationSamples int   // (default: 60)
	MinIntervalMs        int64 // (default: 1200)

	// Dip gate
	DipSearch       int     // samples searched after the peak (default: 35)
	DipSigma        float64 // dip must sit this many unclamped stds below the mean (default: 1.5)
	MaxDipAbs       float64 // absolute dip ceiling (default: 6.0)
	MinPeakToDipAbs float64 // absolute range floor (default: 8.0)
	RangeSigma      float64 // range must exceed this many effective stds (default: 5.0)

	// Recovery gate
	RecSearch      int     // samples searched after the dip (default: 30)
	RecoverySigma  float64 // recovery must exceed mean + this many effective stds (default: 1.0)
	MinRiseFromDip float64 // (default: 5.0)

	// Streaming look-back: indices len-ScanFrom through len-ScanTo.
	ScanFrom int // (default: 90)
	ScanTo   int // (default: 50)

	// Post-filters
	ConsensusEnabled   bool
	CalibrationEnabled bool
	Consensus          consensus.Config
	Calibration        calibration.Config

	Burst BurstConfig

	// Debug logs every post-filter rejection.
	Debug bool
}

// BurstConfig controls retrospective thinning of shot clusters in batch mode.
type BurstConfig struct {
	Enabled  bool
	MinShots int   // shots within WindowMs that make a burst (default: 3)
	WindowMs int64 // (default: 12000)
	SlotMs   int64 // at most one shot kept per slot (default: 8000)
}

// DefaultConfig returns the built-in detector configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a detector Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BaselineWindow:       cfg.GetBaselineWindow(),
		BaselineGap:          cfg.GetBaselineGap(),
		BaselineMinSamples:   cfg.GetBaselineMinSamples(),
		EffectiveStdCap:      cfg.GetEffectiveStdCap(),
		PeakSigma:            cfg.GetPeakSigma(),
		MovingPeakSigma:      cfg.GetMovingPeakSigma(),
		MovingStdThreshold:   cfg.GetMovementStdThreshold(),
		MinPeakAbs:           cfg.GetMinPeakAbs(),
		MinSeparationSamples: cfg.GetMinShotSeparationSamples(),
		MinIntervalMs:        cfg.GetMinShotIntervalMs(),
		DipSearch:            cfg.GetDipSearchSamples(),
		DipSigma:             cfg.GetDipSigma(),
		MaxDipAbs:            cfg.GetMaxDipAbs(),
		MinPeakToDipAbs:      cfg.GetMinPeakToDipAbs(),
		RangeSigma:           cfg.GetRangeSigma(),
		RecSearch:            cfg.GetRecoverySearchSamples(),
		RecoverySigma:        cfg.GetRecoverySigma(),
		MinRiseFromDip:       cfg.GetMinRiseFromDip(),
		ScanFrom:             cfg.GetStreamScanFrom(),
		ScanTo:               cfg.GetStreamScanTo(),
		ConsensusEnabled:     cfg.GetConsensusEnabled(),
		CalibrationEnabled:   cfg.GetCalibrationEnabled(),
		Consensus:            consensus.ConfigFromTuning(cfg),
		Calibration:          calibration.ConfigFromTuning(cfg),
		Burst: BurstConfig{
			Enabled:  cfg.GetBurstPruneEnabled(),
			MinShots: cfg.GetBurstMinShots(),
			WindowMs: cfg.GetBurstWindowMs(),
			SlotMs:   cfg.GetBurstSlotMs(),
		},
	}
}
