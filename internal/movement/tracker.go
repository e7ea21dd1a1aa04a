// Package movement tracks whether the device is being carried through
// walking or running motion, from a short rolling variance of the
// acceleration magnitude.
package movement

import (
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/window"
)

// Config holds the movement tracker parameters.
type Config struct {
	Window            int     // samples in the rolling window (default: 20)
	StdThreshold      float64 // std above which the device is moving (default: 0.8)
	MinDwellMs        int64   // minimum time in moving before stationary is allowed (default: 800)
	IntensityStdFloor float64 // std mapped to intensity 0 (default: 0.3)
	IntensityStdSpan  float64 // std span mapped onto [0, 1] (default: 1.5)
}

// DefaultConfig returns the built-in tracker parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Window:            cfg.GetMovementWindow(),
		StdThreshold:      cfg.GetMovementStdThreshold(),
		MinDwellMs:        cfg.GetMovementMinDwellMs(),
		IntensityStdFloor: cfg.GetIntensityStdFloor(),
		IntensityStdSpan:  cfg.GetIntensityStdSpan(),
	}
}

// State is a snapshot of the tracker output.
type State struct {
	IsMoving           bool    `json:"is_moving"`
	Intensity          float64 `json:"intensity"`
	LastTransitionTime int64   `json:"last_transition_time"`
}

// Tracker consumes one magnitude at a time and maintains a hysteretic
// moving/stationary state. Entering the moving state is immediate; leaving
// it requires MinDwellMs since the last transition, so the tracker errs
// towards reporting motion.
//
// A Tracker is owned by a single session and is not safe for concurrent use.
type Tracker struct {
	cfg    Config
	ring   []float64
	next   int
	filled int
	state  State
}

// NewTracker creates a Tracker. A window shorter than 2 falls back to the default.
func NewTracker(cfg Config) *Tracker {
	if cfg.Window < 2 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.IntensityStdSpan <= 0 {
		cfg.IntensityStdSpan = DefaultConfig().IntensityStdSpan
	}
	return &Tracker{
		cfg:  cfg,
		ring: make([]float64, cfg.Window),
	}
}

// ProcessSample feeds one acceleration magnitude observed at t (ms) and
// returns whether the device is moving. Until the window is full the prior
// state is returned unchanged.
func (tr *Tracker) ProcessSample(aMag float64, t int64) bool {
	tr.ring[tr.next] = aMag
	tr.next = (tr.next + 1) % len(tr.ring)
	if tr.filled < len(tr.ring) {
		tr.filled++
		if tr.filled < len(tr.ring) {
			return tr.state.IsMoving
		}
	}

	s := window.MeanStd(tr.ring)
	tr.state.Intensity = clamp01((s.Std - tr.cfg.IntensityStdFloor) / tr.cfg.IntensityStdSpan)

	switch {
	case s.Std > tr.cfg.StdThreshold:
		if !tr.state.IsMoving {
			tr.state.IsMoving = true
			tr.state.LastTransitionTime = t
		}
	case tr.state.IsMoving && t-tr.state.LastTransitionTime >= tr.cfg.MinDwellMs:
		tr.state.IsMoving = false
		tr.state.LastTransitionTime = t
	}
	return tr.state.IsMoving
}

// State returns the current tracker output.
func (tr *Tracker) State() State { return tr.state }

// IsMoving reports the current moving flag.
func (tr *Tracker) IsMoving() bool { return tr.state.IsMoving }

// Reset clears all history, used when a recording session restarts.
func (tr *Tracker) Reset() {
	for i := range tr.ring {
		tr.ring[i] = 0
	}
	tr.next = 0
	tr.filled = 0
	tr.state = State{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
