// Package consensus cross-checks a candidate shot against four independent
// statistical criteria and accepts it only when a quorum agrees.
package consensus

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/window"
)

// Method names reported in Result.Methods.
const (
	MethodWindowSigma    = "window_sigma"
	MethodEnvelopeRatio  = "envelope_ratio"
	MethodDipDepth       = "dip_depth"
	MethodPeakProminence = "peak_prominence"
)

// Config holds the voter thresholds.
type Config struct {
	Window           int     // symmetric window for window-sigma (default: 200)
	SigmaThreshold   float64 // z-score to vote (default: 4.0)
	ShortWindow      int     // peak-centred envelope window (default: 50)
	LongWindow       int     // pre-peak baseline window (default: 200)
	RatioThreshold   float64 // envelope ratio to vote (default: 4.0)
	DipCeiling       float64 // dip magnitude below which to vote (default: 5.0)
	Neighborhood     int     // prominence search on each side (default: 100)
	MinProminence    float64 // prominence to vote (default: 5.0)
	MinVotes         int     // quorum (default: 3)
	MinWindowSamples int     // fewest samples a windowed method accepts (default: 20)
}

// DefaultConfig returns the built-in voter thresholds.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Window:           cfg.GetConsensusWindow(),
		SigmaThreshold:   cfg.GetConsensusSigmaThreshold(),
		ShortWindow:      cfg.GetEnvelopeShortWindow(),
		LongWindow:       cfg.GetEnvelopeLongWindow(),
		RatioThreshold:   cfg.GetEnvelopeRatioThreshold(),
		DipCeiling:       cfg.GetDipDepthCeiling(),
		Neighborhood:     cfg.GetProminenceNeighborhood(),
		MinProminence:    cfg.GetMinProminence(),
		MinVotes:         cfg.GetConsensusMinVotes(),
		MinWindowSamples: cfg.GetConsensusMinWindowSamples(),
	}
}

// MethodResult is one method's vote.
type MethodResult struct {
	Method     string  `json:"method"`
	Vote       bool    `json:"vote"`
	Confidence float64 `json:"confidence"`
	Value      float64 `json:"value"` // the statistic compared against the threshold
}

// Result is the aggregate decision.
type Result struct {
	IsShot     bool           `json:"is_shot"`
	Votes      int            `json:"votes"`
	MinVotes   int            `json:"min_votes"`
	Confidence float64        `json:"confidence"` // mean confidence of the methods
	Methods    []MethodResult `json:"methods"`
}

// Voter runs the four methods. It holds no mutable state.
type Voter struct {
	cfg Config
}

// NewVoter creates a Voter.
func NewVoter(cfg Config) *Voter {
	return &Voter{cfg: cfg}
}

// Config returns the voter's thresholds.
func (v *Voter) Config() Config { return v.cfg }

// Vote scores the candidate whose peak, dip and recovery sit at the given
// indices of signal. It never panics on short or out-of-range input: a
// method without enough samples votes false with zero confidence.
func (v *Voter) Vote(signal []float64, peakIdx, dipIdx, recIdx int) Result {
	methods := []MethodResult{
		v.windowSigma(signal, peakIdx),
		v.envelopeRatio(signal, peakIdx),
		v.dipDepth(signal, dipIdx),
		v.peakProminence(signal, peakIdx),
	}
	return Tally(methods, v.cfg.MinVotes)
}

// Tally aggregates method votes under the quorum rule IsShot = votes >= minVotes.
func Tally(methods []MethodResult, minVotes int) Result {
	r := Result{MinVotes: minVotes, Methods: methods}
	var conf float64
	for _, m := range methods {
		if m.Vote {
			r.Votes++
		}
		conf += m.Confidence
	}
	if len(methods) > 0 {
		r.Confidence = conf / float64(len(methods))
	}
	r.IsShot = r.Votes >= minVotes
	return r
}

func (v *Voter) windowSigma(signal []float64, peak int) MethodResult {
	res := MethodResult{Method: MethodWindowSigma}
	if peak < 0 || peak >= len(signal) {
		return res
	}
	half := v.cfg.Window / 2
	lo, hi := window.Span(peak-half, peak+half, len(signal))
	if hi-lo < v.cfg.MinWindowSamples {
		return res
	}
	s := window.MeanStd(signal[lo:hi])
	if s.Std <= 0 {
		return res
	}
	z := (signal[peak] - s.Mean) / s.Std
	res.Value = z
	res.Vote = z > v.cfg.SigmaThreshold
	res.Confidence = clamp01(z / (2 * v.cfg.SigmaThreshold))
	return res
}

func (v *Voter) envelopeRatio(signal []float64, peak int) MethodResult {
	res := MethodResult{Method: MethodEnvelopeRatio}
	if peak < 0 || peak >= len(signal) {
		return res
	}
	half := v.cfg.ShortWindow / 2
	slo, shi := window.Span(peak-half, peak+half, len(signal))
	llo, lhi := window.Span(peak-v.cfg.LongWindow, peak, len(signal))
	if shi-slo < 2 || lhi-llo < v.cfg.MinWindowSamples {
		return res
	}
	short := signal[slo:shi]
	envelope := floats.Max(short) - floats.Min(short)
	base := window.MeanStd(signal[llo:lhi])
	std := math.Max(base.Std, 1e-6)
	ratio := envelope / std
	res.Value = ratio
	res.Vote = ratio > v.cfg.RatioThreshold
	res.Confidence = clamp01(ratio / (2 * v.cfg.RatioThreshold))
	return res
}

func (v *Voter) dipDepth(signal []float64, dip int) MethodResult {
	res := MethodResult{Method: MethodDipDepth}
	if dip < 0 || dip >= len(signal) || v.cfg.DipCeiling <= 0 {
		return res
	}
	d := signal[dip]
	res.Value = d
	res.Vote = d < v.cfg.DipCeiling
	res.Confidence = clamp01((v.cfg.DipCeiling - d) / v.cfg.DipCeiling)
	return res
}

func (v *Voter) peakProminence(signal []float64, peak int) MethodResult {
	res := MethodResult{Method: MethodPeakProminence}
	if peak < 0 || peak >= len(signal) {
		return res
	}
	llo, lhi := window.Span(peak-v.cfg.Neighborhood, peak, len(signal))
	rlo, rhi := window.Span(peak+1, peak+1+v.cfg.Neighborhood, len(signal))
	if lhi <= llo || rhi <= rlo {
		return res
	}
	base := math.Max(floats.Min(signal[llo:lhi]), floats.Min(signal[rlo:rhi]))
	prom := signal[peak] - base
	res.Value = prom
	res.Vote = prom > v.cfg.MinProminence
	if v.cfg.MinProminence > 0 {
		res.Confidence = clamp01(prom / (2 * v.cfg.MinProminence))
	} else if res.Vote {
		res.Confidence = 1
	}
	return res
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
