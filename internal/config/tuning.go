package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for detection tuning.
// Every field is optional: a nil field falls back to the default returned by
// the matching Get* accessor, so partial JSON files are safe.
type TuningConfig struct {
	// Sample buffer
	BufferCapacity     *int `json:"buffer_capacity,omitempty"`
	BufferCompactBlock *int `json:"buffer_compact_block,omitempty"`

	// Movement tracker
	MovementWindow       *int     `json:"movement_window,omitempty"`
	MovementStdThreshold *float64 `json:"movement_std_threshold,omitempty"`
	MovementMinDwellMs   *int64   `json:"movement_min_dwell_ms,omitempty"`
	IntensityStdFloor    *float64 `json:"intensity_std_floor,omitempty"`
	IntensityStdSpan     *float64 `json:"intensity_std_span,omitempty"`

	// Baseline
	BaselineWindow     *int     `json:"baseline_window,omitempty"`
	BaselineGap        *int     `json:"baseline_gap,omitempty"`
	BaselineMinSamples *int     `json:"baseline_min_samples,omitempty"`
	EffectiveStdCap    *float64 `json:"effective_std_cap,omitempty"`

	// Peak gate
	PeakSigma       *float64 `json:"peak_sigma,omitempty"`
	MovingPeakSigma *float64 `json:"moving_peak_sigma,omitempty"`
	MinPeakAbs      *float64 `json:"min_peak_abs,omitempty"`

	// Separation gate
	MinShotSeparationSamples *int   `json:"min_shot_separation_samples,omitempty"`
	MinShotIntervalMs        *int64 `json:"min_shot_interval_ms,omitempty"`

	// Dip gate
	DipSearchSamples *int     `json:"dip_search_samples,omitempty"`
	DipSigma         *float64 `json:"dip_sigma,omitempty"`
	MaxDipAbs        *float64 `json:"max_dip_abs,omitempty"`
	MinPeakToDipAbs  *float64 `json:"min_peak_to_dip_abs,omitempty"`
	RangeSigma       *float64 `json:"range_sigma,omitempty"`

	// Recovery gate
	RecoverySearchSamples *int     `json:"recovery_search_samples,omitempty"`
	RecoverySigma         *float64 `json:"recovery_sigma,omitempty"`
	MinRiseFromDip        *float64 `json:"min_rise_from_dip,omitempty"`

	// Streaming look-back
	StreamScanFrom *int `json:"stream_scan_from,omitempty"`
	StreamScanTo   *int `json:"stream_scan_to,omitempty"`

	// Post-filters
	ConsensusEnabled   *bool `json:"consensus_enabled,omitempty"`
	CalibrationEnabled *bool `json:"calibration_enabled,omitempty"`

	// Consensus voter
	ConsensusWindow           *int     `json:"consensus_window,omitempty"`
	ConsensusSigmaThreshold   *float64 `json:"consensus_sigma_threshold,omitempty"`
	EnvelopeShortWindow       *int     `json:"envelope_short_window,omitempty"`
	EnvelopeLongWindow        *int     `json:"envelope_long_window,omitempty"`
	EnvelopeRatioThreshold    *float64 `json:"envelope_ratio_threshold,omitempty"`
	DipDepthCeiling           *float64 `json:"dip_depth_ceiling,omitempty"`
	ProminenceNeighborhood    *int     `json:"prominence_neighborhood,omitempty"`
	MinProminence             *float64 `json:"min_prominence,omitempty"`
	ConsensusMinVotes         *int     `json:"consensus_min_votes,omitempty"`
	ConsensusMinWindowSamples *int     `json:"consensus_min_window_samples,omitempty"`

	// Calibration
	PatternPeakSigma   *float64 `json:"pattern_peak_sigma,omitempty"`
	PatternMinPeakAbs  *float64 `json:"pattern_min_peak_abs,omitempty"`
	PatternMinDrop     *float64 `json:"pattern_min_drop,omitempty"`
	PatternMinRise     *float64 `json:"pattern_min_rise,omitempty"`
	PatternMinSpacing  *int     `json:"pattern_min_spacing,omitempty"`
	ClassifyMargin     *float64 `json:"classify_margin,omitempty"`
	DipRatioRejectStds *float64 `json:"dip_ratio_reject_stds,omitempty"`

	// Classifier distance. ClassifyWeights overrides individual feature
	// weights by feature name; omitted features keep their default weight.
	ClassifyWeights       map[string]float64 `json:"classify_weights,omitempty"`
	ClassifyMinFeatureStd *float64           `json:"classify_min_feature_std,omitempty"`
	ClassifyRelFeatureStd *float64           `json:"classify_rel_feature_std,omitempty"`
	ClassifyMaxFeatureZ   *float64           `json:"classify_max_feature_z,omitempty"`

	// Burst pruning (batch only)
	BurstPruneEnabled *bool  `json:"burst_prune_enabled,omitempty"`
	BurstMinShots     *int   `json:"burst_min_shots,omitempty"`
	BurstWindowMs     *int64 `json:"burst_window_ms,omitempty"`
	BurstSlotMs       *int64 `json:"burst_slot_ms,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// All Get* accessors on an empty config return the built-in defaults.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/<pkg>/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.BufferCapacity != nil && *c.BufferCapacity <= 0 {
		return fmt.Errorf("buffer_capacity must be positive, got %d", *c.BufferCapacity)
	}
	if c.GetBufferCompactBlock() <= 0 || c.GetBufferCompactBlock() > c.GetBufferCapacity() {
		return fmt.Errorf("buffer_compact_block must be in (0, buffer_capacity], got %d", c.GetBufferCompactBlock())
	}
	if c.MovementWindow != nil && *c.MovementWindow < 2 {
		return fmt.Errorf("movement_window must be at least 2, got %d", *c.MovementWindow)
	}
	if c.IntensityStdSpan != nil && *c.IntensityStdSpan <= 0 {
		return fmt.Errorf("intensity_std_span must be positive, got %f", *c.IntensityStdSpan)
	}
	if c.BaselineWindow != nil && *c.BaselineWindow <= 0 {
		return fmt.Errorf("baseline_window must be positive, got %d", *c.BaselineWindow)
	}
	if c.BaselineGap != nil && *c.BaselineGap < 0 {
		return fmt.Errorf("baseline_gap must be non-negative, got %d", *c.BaselineGap)
	}
	if c.EffectiveStdCap != nil && *c.EffectiveStdCap <= 0 {
		return fmt.Errorf("effective_std_cap must be positive, got %f", *c.EffectiveStdCap)
	}
	if c.GetStreamScanFrom() <= c.GetStreamScanTo() {
		return fmt.Errorf("stream_scan_from (%d) must exceed stream_scan_to (%d)", c.GetStreamScanFrom(), c.GetStreamScanTo())
	}
	if c.GetStreamScanTo() < 1 {
		return fmt.Errorf("stream_scan_to must be at least 1, got %d", c.GetStreamScanTo())
	}
	if v := c.GetConsensusMinVotes(); v < 1 || v > 4 {
		return fmt.Errorf("consensus_min_votes must be in [1, 4], got %d", v)
	}
	if c.ClassifyMargin != nil && *c.ClassifyMargin < 0 {
		return fmt.Errorf("classify_margin must be non-negative, got %f", *c.ClassifyMargin)
	}
	for name, w := range c.ClassifyWeights {
		if _, ok := defaultClassifyWeights[name]; !ok {
			return fmt.Errorf("classify_weights: unknown feature %q", name)
		}
		if w < 0 {
			return fmt.Errorf("classify_weights: %s must be non-negative, got %f", name, w)
		}
	}
	if c.GetClassifyMinFeatureStd() < 0 || c.GetClassifyRelFeatureStd() < 0 || c.GetClassifyMaxFeatureZ() < 0 {
		return fmt.Errorf("classify_min_feature_std, classify_rel_feature_std and classify_max_feature_z must be non-negative")
	}
	if c.GetBurstSlotMs() <= 0 || c.GetBurstWindowMs() <= 0 {
		return fmt.Errorf("burst_window_ms and burst_slot_ms must be positive")
	}
	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func int64Or(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// GetBufferCapacity returns the sample buffer capacity (default 3000).
func (c *TuningConfig) GetBufferCapacity() int { return intOr(c.BufferCapacity, 3000) }

// GetBufferCompactBlock returns how many of the oldest samples a compaction drops (default 1000).
func (c *TuningConfig) GetBufferCompactBlock() int { return intOr(c.BufferCompactBlock, 1000) }

// GetMovementWindow returns the movement tracker's rolling window length (default 20).
func (c *TuningConfig) GetMovementWindow() int { return intOr(c.MovementWindow, 20) }

// GetMovementStdThreshold returns the std above which the device counts as moving (default 0.8).
func (c *TuningConfig) GetMovementStdThreshold() float64 {
	return floatOr(c.MovementStdThreshold, 0.8)
}

// GetMovementMinDwellMs returns the minimum time before moving may revert to stationary (default 800).
func (c *TuningConfig) GetMovementMinDwellMs() int64 { return int64Or(c.MovementMinDwellMs, 800) }

// GetIntensityStdFloor returns the std mapped to zero intensity (default 0.3).
func (c *TuningConfig) GetIntensityStdFloor() float64 { return floatOr(c.IntensityStdFloor, 0.3) }

// GetIntensityStdSpan returns the std span mapped onto [0, 1] intensity (default 1.5).
func (c *TuningConfig) GetIntensityStdSpan() float64 { return floatOr(c.IntensityStdSpan, 1.5) }

// GetBaselineWindow returns the baseline window length in samples (default 80).
func (c *TuningConfig) GetBaselineWindow() int { return intOr(c.BaselineWindow, 80) }

// GetBaselineGap returns how many samples before the peak the baseline window ends (default 20).
func (c *TuningConfig) GetBaselineGap() int { return intOr(c.BaselineGap, 20) }

// GetBaselineMinSamples returns the minimum baseline sample count (default 10).
func (c *TuningConfig) GetBaselineMinSamples() int { return intOr(c.BaselineMinSamples, 10) }

// GetEffectiveStdCap returns the ceiling on std used by peak/range/recovery gates (default 1.5).
func (c *TuningConfig) GetEffectiveStdCap() float64 { return floatOr(c.EffectiveStdCap, 1.5) }

// GetPeakSigma returns the peak sigma multiplier (default 2.5).
func (c *TuningConfig) GetPeakSigma() float64 { return floatOr(c.PeakSigma, 2.5) }

// GetMovingPeakSigma returns the peak sigma multiplier used when the baseline is moving (default 5.0).
func (c *TuningConfig) GetMovingPeakSigma() float64 { return floatOr(c.MovingPeakSigma, 5.0) }

// GetMinPeakAbs returns the absolute peak floor in m/s² (default 14).
func (c *TuningConfig) GetMinPeakAbs() float64 { return floatOr(c.MinPeakAbs, 14.0) }

// GetMinShotSeparationSamples returns the minimum samples between shots (default 60).
func (c *TuningConfig) GetMinShotSeparationSamples() int {
	return intOr(c.MinShotSeparationSamples, 60)
}

// GetMinShotIntervalMs returns the minimum time between shots (default 1200).
func (c *TuningConfig) GetMinShotIntervalMs() int64 { return int64Or(c.MinShotIntervalMs, 1200) }

// GetDipSearchSamples returns how far past the peak the dip is searched (default 35).
func (c *TuningConfig) GetDipSearchSamples() int { return intOr(c.DipSearchSamples, 35) }

// GetDipSigma returns the dip sigma multiplier, applied to the unclamped std (default 1.5).
func (c *TuningConfig) GetDipSigma() float64 { return floatOr(c.DipSigma, 1.5) }

// GetMaxDipAbs returns the absolute dip ceiling (default 6).
func (c *TuningConfig) GetMaxDipAbs() float64 { return floatOr(c.MaxDipAbs, 6.0) }

// GetMinPeakToDipAbs returns the absolute minimum peak-to-dip range (default 8).
func (c *TuningConfig) GetMinPeakToDipAbs() float64 { return floatOr(c.MinPeakToDipAbs, 8.0) }

// GetRangeSigma returns the range sigma multiplier (default 5.0).
func (c *TuningConfig) GetRangeSigma() float64 { return floatOr(c.RangeSigma, 5.0) }

// GetRecoverySearchSamples returns how far past the dip recovery is searched (default 30).
func (c *TuningConfig) GetRecoverySearchSamples() int { return intOr(c.RecoverySearchSamples, 30) }

// GetRecoverySigma returns the recovery sigma multiplier (default 1.0).
func (c *TuningConfig) GetRecoverySigma() float64 { return floatOr(c.RecoverySigma, 1.0) }

// GetMinRiseFromDip returns the minimum recovery rise above the dip (default 5).
func (c *TuningConfig) GetMinRiseFromDip() float64 { return floatOr(c.MinRiseFromDip, 5.0) }

// GetStreamScanFrom returns the oldest look-back offset scanned in streaming mode (default 90).
func (c *TuningConfig) GetStreamScanFrom() int { return intOr(c.StreamScanFrom, 90) }

// GetStreamScanTo returns the newest look-back offset scanned in streaming mode (default 50).
func (c *TuningConfig) GetStreamScanTo() int { return intOr(c.StreamScanTo, 50) }

// GetConsensusEnabled reports whether the consensus post-filter runs (default false).
func (c *TuningConfig) GetConsensusEnabled() bool { return boolOr(c.ConsensusEnabled, false) }

// GetCalibrationEnabled reports whether the calibration post-filter runs
// when a calibration set is loaded (default true).
func (c *TuningConfig) GetCalibrationEnabled() bool { return boolOr(c.CalibrationEnabled, true) }

// GetConsensusWindow returns the window-sigma window length (default 200).
func (c *TuningConfig) GetConsensusWindow() int { return intOr(c.ConsensusWindow, 200) }

// GetConsensusSigmaThreshold returns the window-sigma z threshold (default 4.0).
func (c *TuningConfig) GetConsensusSigmaThreshold() float64 {
	return floatOr(c.ConsensusSigmaThreshold, 4.0)
}

// GetEnvelopeShortWindow returns the peak-centred envelope window (default 50).
func (c *TuningConfig) GetEnvelopeShortWindow() int { return intOr(c.EnvelopeShortWindow, 50) }

// GetEnvelopeLongWindow returns the pre-peak envelope baseline window (default 200).
func (c *TuningConfig) GetEnvelopeLongWindow() int { return intOr(c.EnvelopeLongWindow, 200) }

// GetEnvelopeRatioThreshold returns the envelope ratio threshold (default 4.0).
func (c *TuningConfig) GetEnvelopeRatioThreshold() float64 {
	return floatOr(c.EnvelopeRatioThreshold, 4.0)
}

// GetDipDepthCeiling returns the dip-depth vote ceiling (default 5.0).
func (c *TuningConfig) GetDipDepthCeiling() float64 { return floatOr(c.DipDepthCeiling, 5.0) }

// GetProminenceNeighborhood returns the prominence search neighborhood (default 100).
func (c *TuningConfig) GetProminenceNeighborhood() int {
	return intOr(c.ProminenceNeighborhood, 100)
}

// GetMinProminence returns the minimum peak prominence (default 5.0).
func (c *TuningConfig) GetMinProminence() float64 { return floatOr(c.MinProminence, 5.0) }

// GetConsensusMinVotes returns the consensus quorum (default 3).
func (c *TuningConfig) GetConsensusMinVotes() int { return intOr(c.ConsensusMinVotes, 3) }

// GetConsensusMinWindowSamples returns the minimum samples a windowed method needs (default 20).
func (c *TuningConfig) GetConsensusMinWindowSamples() int {
	return intOr(c.ConsensusMinWindowSamples, 20)
}

// GetPatternPeakSigma returns the relaxed pattern-mining peak sigma (default 1.0).
func (c *TuningConfig) GetPatternPeakSigma() float64 { return floatOr(c.PatternPeakSigma, 1.0) }

// GetPatternMinPeakAbs returns the relaxed pattern-mining peak floor (default 11.0).
func (c *TuningConfig) GetPatternMinPeakAbs() float64 { return floatOr(c.PatternMinPeakAbs, 11.0) }

// GetPatternMinDrop returns the relaxed minimum peak-to-dip drop (default 3.0).
func (c *TuningConfig) GetPatternMinDrop() float64 { return floatOr(c.PatternMinDrop, 3.0) }

// GetPatternMinRise returns the relaxed minimum dip-to-recovery rise (default 2.0).
func (c *TuningConfig) GetPatternMinRise() float64 { return floatOr(c.PatternMinRise, 2.0) }

// GetPatternMinSpacing returns the minimum samples between mined patterns (default 20).
func (c *TuningConfig) GetPatternMinSpacing() int { return intOr(c.PatternMinSpacing, 20) }

// GetClassifyMargin returns the distance margin granted to the shooting profile (default 0.5).
func (c *TuningConfig) GetClassifyMargin() float64 { return floatOr(c.ClassifyMargin, 0.5) }

// GetDipRatioRejectStds returns the stage-1 dipRatio rejection width (default 2.0).
func (c *TuningConfig) GetDipRatioRejectStds() float64 { return floatOr(c.DipRatioRejectStds, 2.0) }

// defaultClassifyWeights emphasise the dip and the dip-to-recovery gyro
// over timing and peak features.
var defaultClassifyWeights = map[string]float64{
	"peakMag":          0.5,
	"dipMag":           2.0,
	"recoveryMag":      1.0,
	"range":            1.5,
	"dipRatio":         2.0,
	"peakToDipSamples": 0.5,
	"dipToRecSamples":  0.5,
	"totalDuration":    0.5,
	"gyroMagAtPeak":    0.75,
	"gyroMagAtDip":     1.0,
	"maxGyroInWindow":  1.0,
	"gyroDipToRec":     1.5,
}

// GetClassifyWeights returns the per-feature distance weights keyed by
// feature name, with any ClassifyWeights overrides applied. The result is
// a fresh map.
func (c *TuningConfig) GetClassifyWeights() map[string]float64 {
	out := make(map[string]float64, len(defaultClassifyWeights))
	for name, w := range defaultClassifyWeights {
		out[name] = w
	}
	for name, w := range c.ClassifyWeights {
		out[name] = w
	}
	return out
}

// GetClassifyMinFeatureStd returns the absolute std floor used in z-scores (default 1e-3).
func (c *TuningConfig) GetClassifyMinFeatureStd() float64 {
	return floatOr(c.ClassifyMinFeatureStd, 1e-3)
}

// GetClassifyRelFeatureStd returns the std floor as a fraction of |mean| (default 0.05).
func (c *TuningConfig) GetClassifyRelFeatureStd() float64 {
	return floatOr(c.ClassifyRelFeatureStd, 0.05)
}

// GetClassifyMaxFeatureZ returns the per-feature z-score cap; 0 disables it (default 10).
func (c *TuningConfig) GetClassifyMaxFeatureZ() float64 { return floatOr(c.ClassifyMaxFeatureZ, 10) }

// GetBurstPruneEnabled reports whether batch results are burst-pruned (default false).
func (c *TuningConfig) GetBurstPruneEnabled() bool { return boolOr(c.BurstPruneEnabled, false) }

// GetBurstMinShots returns the shot count that makes a cluster a burst (default 3).
func (c *TuningConfig) GetBurstMinShots() int { return intOr(c.BurstMinShots, 3) }

// GetBurstWindowMs returns the burst detection window (default 12000).
func (c *TuningConfig) GetBurstWindowMs() int64 { return int64Or(c.BurstWindowMs, 12000) }

// GetBurstSlotMs returns the per-shot slot inside a burst (default 8000).
func (c *TuningConfig) GetBurstSlotMs() int64 { return int64Or(c.BurstSlotMs, 8000) }
