// Package engine wires one session's sample buffer, movement tracker and
// shot detector so that a host can push samples one at a time.
package engine

import (
	"context"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/movement"
	"github.com/banshee-data/jumpshot/internal/shot"
)

// Update is the outcome of processing one sample.
type Update struct {
	Index      int64          // absolute index assigned to the sample
	Movement   movement.State // tracker state after the sample
	Transition bool           // the moving flag changed on this sample
	Shot       *shot.Record   // non-nil when a shot was accepted
}

// Engine is the per-session detection pipeline. It is owned by a single
// goroutine; only SetCalibration may be called from elsewhere.
type Engine struct {
	buf      *imu.Buffer
	tracker  *movement.Tracker
	detector *shot.Detector
}

// New builds an Engine from a tuning configuration. A nil cfg uses the
// built-in defaults.
func New(cfg *config.TuningConfig) *Engine {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return NewWithComponents(
		imu.NewBufferFromTuning(cfg),
		movement.NewTracker(movement.ConfigFromTuning(cfg)),
		shot.NewDetector(shot.ConfigFromTuning(cfg)),
	)
}

// NewWithComponents builds an Engine from existing components.
func NewWithComponents(buf *imu.Buffer, tracker *movement.Tracker, detector *shot.Detector) *Engine {
	return &Engine{buf: buf, tracker: tracker, detector: detector}
}

// Process runs one sample through the tracker and the streaming detector.
// The stored copy of s carries the tracker's moving flag.
func (e *Engine) Process(s imu.Sample) Update {
	was := e.tracker.IsMoving()
	s.Moving = e.tracker.ProcessSample(s.AMag, s.T)

	u := Update{
		Index:      e.buf.Append(s),
		Movement:   e.tracker.State(),
		Transition: s.Moving != was,
	}
	if rec, ok := e.detector.Process(e.buf); ok {
		u.Shot = rec
	}
	return u
}

// Analyze re-runs batch detection over the samples currently buffered.
// Returned indices are relative to the oldest buffered sample; add
// Buffer().Offset() for absolute indices.
func (e *Engine) Analyze(ctx context.Context) ([]shot.Record, error) {
	return e.detector.DetectAll(ctx, e.buf.Samples())
}

// SetCalibration replaces the detector's calibration set.
func (e *Engine) SetCalibration(set *calibration.Set) { e.detector.SetCalibration(set) }

// Movement returns the current movement state.
func (e *Engine) Movement() movement.State { return e.tracker.State() }

// Buffer exposes the sample buffer for read-only inspection.
func (e *Engine) Buffer() *imu.Buffer { return e.buf }

// Detector returns the underlying detector.
func (e *Engine) Detector() *shot.Detector { return e.detector }

// Reset starts a new recording session. Absolute indices keep increasing
// and the calibration set is kept.
func (e *Engine) Reset() {
	e.buf.Reset()
	e.tracker.Reset()
	e.detector.Reset()
}
