// Package shot implements the three-phase jump-shot detector: a peak well
// above a trailing baseline, a deep dip shortly after, and a recovery. The
// same gates run in streaming mode over an imu.Buffer and in batch mode
// over a complete recording.
package shot

import (
	"context"
	"sync/atomic"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/monitoring"
)

// ctxCheckInterval is how many indices batch mode scans between context checks.
const ctxCheckInterval = 256

// Detector finds shots. Process is meant to be driven by a single session
// goroutine; DetectAll keeps all of its state local and may run elsewhere
// concurrently. SetCalibration is safe from any goroutine.
type Detector struct {
	cfg     Config
	filters []Filter
	calib   atomic.Pointer[calibration.Set]

	last lastShot
}

// NewDetector creates a Detector with the post-filter chain cfg enables:
// consensus first, then calibration.
func NewDetector(cfg Config) *Detector {
	d := NewDetectorWithFilters(cfg)
	if cfg.ConsensusEnabled {
		d.filters = append(d.filters, NewConsensusFilter(cfg.Consensus))
	}
	if cfg.CalibrationEnabled {
		d.filters = append(d.filters, NewCalibrationFilter(cfg.Calibration, d.Calibration))
	}
	return d
}

// NewDetectorWithFilters creates a Detector with an explicit filter chain,
// ignoring the enable flags in cfg.
func NewDetectorWithFilters(cfg Config, filters ...Filter) *Detector {
	return &Detector{cfg: cfg, filters: filters}
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Filters returns the names of the post-filter stages in order.
func (d *Detector) Filters() []string {
	names := make([]string, len(d.filters))
	for i, f := range d.filters {
		names[i] = f.Name()
	}
	return names
}

// SetCalibration replaces the calibration set. nil removes it.
func (d *Detector) SetCalibration(set *calibration.Set) {
	d.calib.Store(set)
}

// Calibration returns the current calibration set, or nil.
func (d *Detector) Calibration() *calibration.Set {
	return d.calib.Load()
}

// Reset forgets the last streaming shot. The calibration set is kept.
func (d *Detector) Reset() {
	d.last = lastShot{}
}

// Process scans the streaming look-back window of buf, indices
// len-ScanFrom through len-ScanTo, and returns the first accepted shot.
// An index is only evaluated once its whole dip and recovery search range
// has arrived, so streaming sees the same triple batch mode does.
// At most one shot is returned per call.
func (d *Detector) Process(buf *imu.Buffer) (*Record, bool) {
	n := buf.Len()
	from, to := n-d.cfg.ScanFrom, n-d.cfg.ScanTo
	if from < 1 {
		from = 1
	}
	if limit := n - 1 - d.cfg.DipSearch - d.cfg.RecSearch; to > limit {
		to = limit
	}
	if to > n-2 {
		to = n - 2
	}
	if from > to {
		return nil, false
	}

	sig := Signal{Samples: buf.Samples(), Mags: buf.Mags()}
	offset := buf.Offset()
	for i := from; i <= to; i++ {
		c, gate := d.cfg.evaluate(sig.Samples, sig.Mags, i, offset, d.last)
		if gate != GateNone {
			continue
		}
		if !d.runFilters(sig, &c) {
			continue
		}
		rec := newRecord(&c, offset, sig.Samples[i].Moving)
		d.last = lastShot{ok: true, abs: rec.PeakIndex, t: rec.Timestamp}
		return &rec, true
	}
	return nil, false
}

// DetectAll scans every index of samples once and returns the accepted
// shots in order. It does not touch the streaming state. If ctx is
// cancelled mid-scan it returns ctx.Err() and no records.
func (d *Detector) DetectAll(ctx context.Context, samples []imu.Sample) ([]Record, error) {
	sig := Signal{Samples: samples, Mags: imu.Mags(samples)}
	var (
		last    lastShot
		records []Record
	)
	for i := 1; i < len(samples)-1; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c, gate := d.cfg.evaluate(sig.Samples, sig.Mags, i, 0, last)
		if gate != GateNone {
			continue
		}
		if !d.runFilters(sig, &c) {
			continue
		}
		rec := newRecord(&c, 0, samples[i].Moving)
		last = lastShot{ok: true, abs: rec.PeakIndex, t: rec.Timestamp}
		records = append(records, rec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return PruneBursts(records, d.cfg.Burst), nil
}

func (d *Detector) runFilters(sig Signal, c *Candidate) bool {
	for _, f := range d.filters {
		if !f.Accept(sig, c) {
			if d.cfg.Debug {
				monitoring.Logf("shot: candidate at t=%d (peak %.2f, range %.2f) rejected by %s",
					c.Timestamp, c.PeakMag, c.Range, f.Name())
			}
			return false
		}
	}
	return true
}
